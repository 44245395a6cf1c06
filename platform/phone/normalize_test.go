package phone

import "testing"

func TestDigitsToASCII(t *testing.T) {
	got := DigitsToASCII("الطابق ٣ رقم ٠٥٥١٢٣٤٥٦٧")
	want := "الطابق 3 رقم 0551234567"
	if got != want {
		t.Fatalf("DigitsToASCII = %q, want %q", got, want)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "local mobile", raw: "0551234567", want: "966551234567"},
		{name: "already canonical", raw: "966551234567", want: "966551234567"},
		{name: "plus prefix", raw: "+966551234567", want: "966551234567"},
		{name: "arabic digits", raw: "٠٥٥١٢٣٤٥٦٧", want: "966551234567"},
		{name: "spaces and dashes", raw: "055 123-4567", want: "966551234567"},
		{name: "bare subscriber number", raw: "551234567", want: "966551234567"},
		{name: "empty", raw: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.raw); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"0551234567", "٠٥٥١٢٣٤٥٦٧", "+966501112222", "5xx"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestFormatNumericInput(t *testing.T) {
	if got := FormatNumericInput("الطابق ١٢a"); got != "12" {
		t.Fatalf("FormatNumericInput = %q, want %q", got, "12")
	}
	if got := FormatNumericInput("abc"); got != "" {
		t.Fatalf("FormatNumericInput = %q, want empty", got)
	}
}

func TestNormalizeE164KeepsUnparseableInput(t *testing.T) {
	if got := NormalizeE164("  not a number "); got != "not a number" {
		t.Fatalf("NormalizeE164 = %q", got)
	}
	if got := NormalizeE164(""); got != "" {
		t.Fatalf("NormalizeE164 empty = %q", got)
	}
}
