package util

import "testing"

func TestCanonicalPhone(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare digits", in: "919876543210", want: "+919876543210"},
		{name: "with plus", in: "+919876543210", want: "+919876543210"},
		{name: "surrounding whitespace", in: "  14155552671 ", want: "+14155552671"},
		{name: "minimum length", in: "1234567", want: "+1234567"},
		{name: "maximum length", in: "123456789012345", want: "+123456789012345"},
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace only", in: "   ", wantErr: true},
		{name: "plus only", in: "+", wantErr: true},
		{name: "too short", in: "123456", wantErr: true},
		{name: "too long", in: "1234567890123456", wantErr: true},
		{name: "letters", in: "91abc43210", wantErr: true},
		{name: "dashes", in: "+1-415-555-2671", wantErr: true},
		{name: "internal spaces", in: "91 9876 543210", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalPhone(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CanonicalPhone(%q) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("CanonicalPhone(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("CanonicalPhone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalPhoneIdempotent(t *testing.T) {
	first, err := CanonicalPhone("919876543210")
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := CanonicalPhone(first)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if first != second {
		t.Fatalf("not idempotent: %q then %q", first, second)
	}
}
