package textutil

import (
	"reflect"
	"testing"
)

func TestNormalizeSkills(t *testing.T) {
	tests := []struct {
		name   string
		skills []string
		want   []string
	}{
		{
			name:   "trims and keeps order",
			skills: []string{" Go ", "React", "SQL"},
			want:   []string{"Go", "React", "SQL"},
		},
		{
			name:   "case-insensitive duplicates keep first spelling",
			skills: []string{"Go", "go", "GO", "Docker"},
			want:   []string{"Go", "Docker"},
		},
		{
			name:   "collapses inner whitespace",
			skills: []string{"Machine   Learning", "machine learning"},
			want:   []string{"Machine Learning"},
		},
		{
			name:   "drops blanks",
			skills: []string{"", "  ", "Kotlin"},
			want:   []string{"Kotlin"},
		},
		{
			name:   "nil input",
			skills: nil,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSkills(tt.skills)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeSkills() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitSkills(t *testing.T) {
	got := SplitSkills("Go, Postgres,,go , Redis")
	want := []string{"Go", "Postgres", "Redis"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSkills() = %v, want %v", got, want)
	}
}
