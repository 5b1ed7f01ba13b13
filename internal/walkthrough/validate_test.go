package walkthrough

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestValidateClean(t *testing.T) {
	wt := &Walkthrough{
		Title:      "ok",
		Repository: &Repository{Remote: "git@github.com:org/repo.git", BaseBranch: "main"},
		Steps: []Step{
			{ID: 1, Title: "a", Location: "a.go:1-2", BaseLocation: "a.go:1-3"},
			{ID: 2, Title: "b", ParentID: IntPtr(1)},
		},
	}
	warnings := Validate(wt, ValidateOptions{WorkspaceRemote: "https://github.com/org/repo"})
	assert.Empty(t, warnings)
}

func TestValidateWarnings(t *testing.T) {
	tests := []struct {
		name string
		wt   Walkthrough
		opts ValidateOptions
		want string
	}{
		{
			name: "missing title",
			wt:   Walkthrough{Steps: []Step{{ID: 1, Title: "a"}}},
			want: "Title is required",
		},
		{
			name: "missing step title",
			wt:   Walkthrough{Title: "t", Steps: []Step{{ID: 1}}},
			want: "Steps[0].Title is required",
		},
		{
			name: "comment without author",
			wt:   Walkthrough{Title: "t", Steps: []Step{{ID: 1, Title: "a", Comments: []Comment{{ID: "x", Body: "b"}}}}},
			want: "Steps[0].Comments[0].Author is required",
		},
		{
			name: "duplicate ids",
			wt:   Walkthrough{Title: "t", Steps: []Step{{ID: 1, Title: "a"}, {ID: 1, Title: "b"}}},
			want: "Duplicate step id 1",
		},
		{
			name: "missing parent",
			wt:   Walkthrough{Title: "t", Steps: []Step{{ID: 1, Title: "a", ParentID: IntPtr(9)}}},
			want: "references missing parent 9",
		},
		{
			name: "parent cycle",
			wt:   Walkthrough{Title: "t", Steps: []Step{{ID: 1, Title: "a", ParentID: IntPtr(1)}}},
			want: "part of a parent cycle",
		},
		{
			name: "invalid location",
			wt:   Walkthrough{Title: "t", Steps: []Step{{ID: 1, Title: "a", Location: "nocolon"}}},
			want: "invalid location: nocolon",
		},
		{
			name: "one reversed range among valid ones",
			wt:   Walkthrough{Title: "t", Steps: []Step{{ID: 1, Title: "a", Location: "a.go:5-5,20-10"}}},
			want: "invalid location: a.go:5-5,20-10",
		},
		{
			name: "line zero in base location",
			wt: Walkthrough{Title: "t", Repository: &Repository{BaseBranch: "main"},
				Steps: []Step{{ID: 1, Title: "a", BaseLocation: "a.go:0-0,3-3"}}},
			want: "invalid base_location: a.go:0-0,3-3",
		},
		{
			name: "multiple base refs",
			wt: Walkthrough{Title: "t", Repository: &Repository{BaseCommit: "abc", PR: 3},
				Steps: []Step{{ID: 1, Title: "a"}}},
			want: "Multiple base references specified (baseCommit, pr). Using baseCommit",
		},
		{
			name: "base location without base ref",
			wt:   Walkthrough{Title: "t", Steps: []Step{{ID: 1, Title: "a", BaseLocation: "a.go:1"}}},
			want: "no base reference is configured",
		},
		{
			name: "remote mismatch",
			wt: Walkthrough{Title: "t", Repository: &Repository{Remote: "https://github.com/org/other"},
				Steps: []Step{{ID: 1, Title: "a"}}},
			opts: ValidateOptions{WorkspaceRemote: "git@github.com:org/repo.git"},
			want: "does not match workspace origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := Validate(&tt.wt, tt.opts)
			if !containsWarning(warnings, tt.want) {
				t.Errorf("expected a warning containing %q, got %v", tt.want, warnings)
			}
		})
	}
}
