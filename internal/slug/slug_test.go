package slug

import (
	"testing"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Chess Club", "chess-club"},
		{"punctuation stripped", "Chess Club!", "chess-club"},
		{"multiple spaces", "Debate   Society", "debate-society"},
		{"leading and trailing", "  The Paper  ", "the-paper"},
		{"underscores", "math_olympiad_team", "math-olympiad-team"},
		{"repeated hyphens", "a--b", "a-b"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.input); got != tt.expected {
				t.Errorf("Make(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{
		"chess-club": true,
	}
	exists := func(s string) (bool, error) {
		return taken[s], nil
	}

	got, err := Unique("Chess Club!", exists)
	if err != nil {
		t.Fatalf("Unique() error = %v", err)
	}
	if got != "chess-club-1" {
		t.Errorf("Unique() = %q, want chess-club-1", got)
	}
}

func TestUniqueNoCollision(t *testing.T) {
	exists := func(s string) (bool, error) { return false, nil }

	got, err := Unique("Robotics", exists)
	if err != nil {
		t.Fatalf("Unique() error = %v", err)
	}
	if got != "robotics" {
		t.Errorf("Unique() = %q, want robotics", got)
	}
}

func TestUniqueSkipsSeveral(t *testing.T) {
	taken := map[string]bool{
		"chess-club":   true,
		"chess-club-1": true,
		"chess-club-2": true,
	}
	exists := func(s string) (bool, error) { return taken[s], nil }

	got, err := Unique("Chess Club", exists)
	if err != nil {
		t.Fatalf("Unique() error = %v", err)
	}
	if got != "chess-club-3" {
		t.Errorf("Unique() = %q, want chess-club-3", got)
	}
}
