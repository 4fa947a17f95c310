// README: Normalization and alias resolution tests.
package matching

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tahrir", "tahrir"},
		{"  Ramses   Square  ", "ramses square"},
		{"NASR\tCITY", "nasr city"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Ramsis", "ramses", true},
		{"رمسيس", "ramses", true},
		{"mahatet masr", "ramses", true},
		{"Tahrir Square", "tahrir", true},
		{"tahrer", "tahrir", true},
		{"masr el gedida", "heliopolis", true},
		{"Fifth Settlement", "new cairo", true},
		// "ataba" is also a downtown alias, declared earlier, so it
		// resolves to downtown rather than its own entry.
		{"ataba", "downtown", true},
		{"Alexandria", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalName(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("CanonicalName(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
