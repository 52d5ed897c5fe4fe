package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{ErrSourceUnavailable, true},
		{ErrFetchFailed, true},
		{ErrPublishFailed, true},
		{fmt.Errorf("wrapped: %w", ErrFetchFailed), true},
		{ErrNoFreshData, false},
		{ErrInvalidReading, false},
		{errors.New("unrelated"), false},
	}
	for _, tc := range cases {
		if got := IsTransient(tc.err); got != tc.want {
			t.Errorf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestSourceReading_Valid(t *testing.T) {
	valid := SourceReading{Price: mustDecimalForTest("2650")}
	if !valid.Valid() {
		t.Error("expected positive-price reading to be valid")
	}
	invalid := SourceReading{Price: mustDecimalForTest("0")}
	if invalid.Valid() {
		t.Error("expected zero-price reading to be invalid")
	}
}
