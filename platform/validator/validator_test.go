package validator

import "testing"

func TestSaudiMobileTag(t *testing.T) {
	v := New()

	valid := []string{"0551234567", "966551234567", "+966551234567", "٠٥٥١٢٣٤٥٦٧"}
	for _, in := range valid {
		if err := v.Var(in, "required,"+TagSaudiMobile); err != nil {
			t.Errorf("%q should be valid: %v", in, err)
		}
	}

	invalid := []string{"123", "0451234567", "05512345678", "9665512345"}
	for _, in := range invalid {
		err := v.Var(in, "required,"+TagSaudiMobile)
		if err == nil {
			t.Errorf("%q should be rejected", in)
			continue
		}
		if tag := FailedTag(err); tag != TagSaudiMobile {
			t.Errorf("%q failed on %q, want %q", in, tag, TagSaudiMobile)
		}
	}
}

func TestFailedTagOnRequired(t *testing.T) {
	err := New().Var("", "required")
	if FailedTag(err) != "required" {
		t.Fatalf("FailedTag = %q, want required", FailedTag(err))
	}
	if FailedTag(nil) != "" {
		t.Fatal("FailedTag(nil) should be empty")
	}
}
