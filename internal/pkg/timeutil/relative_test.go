package timeutil

import (
	"testing"
	"time"
)

func TestAgo(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"future", now.Add(time.Hour), "just now"},
		{"seconds", now.Add(-30 * time.Second), "just now"},
		{"one minute", now.Add(-time.Minute), "1 minute ago"},
		{"minutes", now.Add(-45 * time.Minute), "45 minutes ago"},
		{"hours", now.Add(-5 * time.Hour), "5 hours ago"},
		{"one day", now.Add(-24 * time.Hour), "1 day ago"},
		{"days", now.Add(-72 * time.Hour), "3 days ago"},
		{"months", now.Add(-65 * 24 * time.Hour), "2 months ago"},
		{"years", now.Add(-800 * 24 * time.Hour), "2 years ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ago(tt.t, now); got != tt.want {
				t.Errorf("Ago() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePosted(t *testing.T) {
	if _, ok := ParsePosted(""); ok {
		t.Error("empty value should not parse")
	}
	if _, ok := ParsePosted("yesterday"); ok {
		t.Error("malformed value should not parse")
	}
	got, ok := ParsePosted("2025-05-30T08:00:00.000Z")
	if !ok {
		t.Fatal("expected RFC 3339 value to parse")
	}
	if got.Day() != 30 || got.Hour() != 8 {
		t.Errorf("ParsePosted() = %v", got)
	}
}
