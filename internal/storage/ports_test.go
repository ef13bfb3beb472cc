package storage

import "testing"

func TestValidateKey(t *testing.T) {
	valid := []string{"expenseTracker", "a.b", "a_b-c", "A1"}
	for _, k := range valid {
		if err := ValidateKey(k); err != nil {
			t.Errorf("ValidateKey(%q) unexpected error %v", k, err)
		}
	}
	invalid := []string{"", ".", "..", "a/b", "../x", "a b"}
	for _, k := range invalid {
		if err := ValidateKey(k); err == nil {
			t.Errorf("ValidateKey(%q) expected error", k)
		}
	}
}
