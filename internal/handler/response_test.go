package handler

import (
	"net/http/httptest"
	"testing"
	"time"
)

// ========================================
// Helper Function Tests
// ========================================

func TestAtoiDefault(t *testing.T) {
	tests := []struct {
		input    string
		def      int
		expected int
	}{
		{"10", 5, 10},
		{"1", 0, 1},
		{"", 5, 5},
		{"abc", 10, 10},
		{"-1", 5, 5},
		{"0", 5, 5},
		{"12.5", 5, 5},
	}

	for _, tt := range tests {
		result := atoiDefault(tt.input, tt.def)
		if result != tt.expected {
			t.Errorf("atoiDefault(%q, %d) = %d, expected %d", tt.input, tt.def, result, tt.expected)
		}
	}
}

func TestParseDate(t *testing.T) {
	if d := parseDate("2025-06-15"); !d.Equal(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date %v", d)
	}
	for _, v := range []string{"", "15-06-2025", "yesterday"} {
		if d := parseDate(v); !d.IsZero() {
			t.Errorf("parseDate(%q) should be zero, got %v", v, d)
		}
	}
}

func TestParsePercentage(t *testing.T) {
	if p := parsePercentage("0"); p == nil || *p != 0 {
		t.Errorf("Expected explicit zero, got %v", p)
	}
	if p := parsePercentage("87.5"); p == nil || *p != 87.5 {
		t.Errorf("Expected 87.5, got %v", p)
	}
	if parsePercentage("") != nil || parsePercentage("high") != nil {
		t.Error("Expected nil for empty or invalid percentage")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		query string
		id    int64
		ok    bool
	}{
		{"id=12", 12, true},
		{"id=0", 0, false},
		{"id=-3", 0, false},
		{"id=x", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		id, ok := parseID(httptest.NewRequest("GET", "/api/results/detail?"+tt.query, nil))
		if id != tt.id || ok != tt.ok {
			t.Errorf("parseID(%q) = %d, %v; expected %d, %v", tt.query, id, ok, tt.id, tt.ok)
		}
	}
}
