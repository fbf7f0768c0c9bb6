package notify

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"local nine digit", "612345678", "+237612345678"},
		{"country code without plus", "237612345678", "+237612345678"},
		{"already normalized", "+237612345678", "+237612345678"},
		{"spaces and dashes stripped", "6 12-34 56 78", "+237612345678"},
		{"parentheses stripped", "(237)612345678", "+237612345678"},
		{"unrecognized left alone", "123", "123"},
		{"foreign number left alone", "+33612345678", "+33612345678"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizePhone(tc.in)
			if got != tc.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
