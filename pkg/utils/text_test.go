package utils

import (
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"data/memes/cat.png", "cat.png"},
		{`C:\memes\dog.jpg`, "dog.jpg"},
		{`data/memes\mixed.jpeg`, "mixed.jpeg"},
		{"plain.png", "plain.png"},
		{"trailing/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.in); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateLeft(t *testing.T) {
	if TruncateLeft("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if got := TruncateLeft("data/memes/cat.png", 7); got != "...cat.png" {
		t.Errorf("got %s", got)
	}
	if TruncateLeft("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
}
