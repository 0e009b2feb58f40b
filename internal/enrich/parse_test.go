package enrich

import (
	"strings"
	"testing"
)

func TestParseBulletList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"single quotes", `['a', 'b', 'c']`, []string{"a", "b", "c"}, false},
		{"double quotes", `["one", "two"]`, []string{"one", "two"}, false},
		{"mixed quotes", `['it works', "really"]`, []string{"it works", "really"}, false},
		{"surrounding whitespace", "  ['a']\n", []string{"a"}, false},
		{"escaped quote", `['it\'s fine']`, []string{"it's fine"}, false},
		{"escaped backslash", `['a\\b']`, []string{`a\b`}, false},
		{"newline escape", `['line1\nline2']`, []string{"line1\nline2"}, false},
		{"trailing comma", `['a', 'b',]`, []string{"a", "b"}, false},
		{"quote of other kind inside", `["it's fine"]`, []string{"it's fine"}, false},
		{"empty list", `[]`, nil, true},
		{"prose wrapper", `Here is the list: ['a', 'b']`, nil, true},
		{"trailing prose", `['a', 'b'] as requested`, nil, true},
		{"not a list", `just some text`, nil, true},
		{"bare element", `[a, b]`, nil, true},
		{"number element", `[1, 2, 3]`, nil, true},
		{"unterminated string", `['a', 'b]`, nil, true},
		{"missing comma", `['a' 'b']`, nil, true},
		{"empty input", ``, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBulletList(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseBulletList(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseBulletList(%q): %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"7", 7, false},
		{"0", 0, false},
		{"10", 10, false},
		{" 5 \n", 5, false},
		{"007", 7, false},
		{"11", 0, true},
		{"-1", 0, true},
		{"15", 0, true},
		{"7.5", 0, true},
		{"abc", 0, true},
		{"7/10", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseRating(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseRating(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRating(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseRating(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRatingRangeErrorIsDescriptive(t *testing.T) {
	_, err := parseRating("15")
	if err == nil || !strings.Contains(err.Error(), "0-10") {
		t.Errorf("range error should mention the valid range, got %v", err)
	}
}
