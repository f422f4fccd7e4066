package utils

import "testing"

func TestValidatePhoneNumber(t *testing.T) {
	if err := ValidatePhoneNumber("+33612345678", "FR"); err != nil {
		t.Fatalf("valid FR mobile rejected: %v", err)
	}
	if err := ValidatePhoneNumber("0612345678", "FR"); err != nil {
		t.Fatalf("valid national FR mobile rejected: %v", err)
	}
	if err := ValidatePhoneNumber("123", "FR"); err == nil {
		t.Fatalf("short junk accepted")
	}
	if err := ValidatePhoneNumber("not-a-number", "FR"); err == nil {
		t.Fatalf("non-numeric input accepted")
	}
}
