package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple title", input: "Tasting Menu", expected: "tasting-menu"},
		{name: "punctuation stripped", input: "Spring Menu, 2025!", expected: "spring-menu-2025"},
		{name: "accents folded", input: "Crème Brûlée Dégustation", expected: "creme-brulee-degustation"},
		{name: "multiple spaces", input: "Family   Style", expected: "family-style"},
		{name: "existing hyphens", input: "Farm - to - Table", expected: "farm-to-table"},
		{name: "leading and trailing spaces", input: "  Winter Feast  ", expected: "winter-feast"},
		{name: "only symbols", input: "!@#$%", expected: ""},
		{name: "empty", input: "", expected: ""},
		{name: "mixed case", input: "The HAMPTONS Dinner", expected: "the-hamptons-dinner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"123", true},
		{"0", true},
		{"", false},
		{"12a", false},
		{"-5", false},
		{"spring-menu", false},
	}

	for _, tt := range tests {
		if got := IsNumeric(tt.input); got != tt.want {
			t.Errorf("IsNumeric(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNullString(t *testing.T) {
	if ns := NullString(""); ns.Valid {
		t.Error("NullString(\"\") should be invalid")
	}
	ns := NullString("seasonal")
	if !ns.Valid || ns.String != "seasonal" {
		t.Errorf("NullString(\"seasonal\") = %+v", ns)
	}
	if got := StringOrEmpty(ns); got != "seasonal" {
		t.Errorf("StringOrEmpty = %q", got)
	}
}
