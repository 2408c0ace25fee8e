package testutil

import (
	"reflect"
	"testing"
)

// AssertEqual asserts that two values are equal.
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

// AssertNotEqual asserts that two values are not equal.
func AssertNotEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if reflect.DeepEqual(expected, actual) {
		t.Errorf("expected values to differ, both are %v", expected)
	}
}

// AssertNoError asserts that an error is nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// AssertError asserts that an error is not nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Error("expected error, got nil")
	}
}

// AssertErrorContains asserts that an error's message contains a substring.
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Errorf("expected error containing %q, got nil", substr)
		return
	}
	if !containsString(err.Error(), substr) {
		t.Errorf("expected error containing %q, got %v", substr, err)
	}
}

// AssertTrue asserts that a value is true.
func AssertTrue(t *testing.T, actual bool) {
	t.Helper()
	if !actual {
		t.Error("expected true, got false")
	}
}

// AssertFalse asserts that a value is false.
func AssertFalse(t *testing.T, actual bool) {
	t.Helper()
	if actual {
		t.Error("expected false, got true")
	}
}

// AssertLen asserts the length of a slice, map, or string.
func AssertLen(t *testing.T, obj any, length int) {
	t.Helper()
	v := reflect.ValueOf(obj)
	if v.Len() != length {
		t.Errorf("expected length %d, got %d", length, v.Len())
	}
}

func containsString(s, substr string) bool {
	if substr == "" {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
