package walkthrough

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantOK   bool
		wantPath string
		want     []LineRange
	}{
		{
			name:     "single range",
			input:    "src/a.ts:10-20",
			wantOK:   true,
			wantPath: "src/a.ts",
			want:     []LineRange{{10, 20}},
		},
		{
			name:     "single line",
			input:    "src/a.ts:7",
			wantOK:   true,
			wantPath: "src/a.ts",
			want:     []LineRange{{7, 7}},
		},
		{
			name:     "multiple ranges with whitespace",
			input:    "main.go: 1-3 , 9 ,12 - 14",
			wantOK:   true,
			wantPath: "main.go",
			want:     []LineRange{{1, 3}, {9, 9}, {12, 14}},
		},
		{
			name:     "last colon splits path",
			input:    "a:b:10-20",
			wantOK:   true,
			wantPath: "a:b",
			want:     []LineRange{{10, 20}},
		},
		{
			name:     "windows drive letter",
			input:    `C:\src\main.go:5-6`,
			wantOK:   true,
			wantPath: `C:\src\main.go`,
			want:     []LineRange{{5, 6}},
		},
		{
			name:     "malformed tokens skipped",
			input:    "x.go:abc,4-5,7-z",
			wantOK:   true,
			wantPath: "x.go",
			want:     []LineRange{{4, 5}},
		},
		{
			name:     "reversed range skipped",
			input:    "x.go:9-3,1",
			wantOK:   true,
			wantPath: "x.go",
			want:     []LineRange{{1, 1}},
		},
		{name: "no colon", input: "no-colon-here"},
		{name: "empty range list", input: "path:"},
		{name: "only invalid ranges", input: "path:a-b,c"},
		{name: "zero line", input: "path:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, ok := ParseLocation(tt.input)
			if !tt.wantOK {
				assert.False(t, ok)
				assert.Nil(t, loc)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantPath, loc.Path)
			assert.Equal(t, tt.want, loc.Ranges)
		})
	}
}

func TestParseLocationPathIsPrefixBeforeLastColon(t *testing.T) {
	for _, input := range []string{"a.go:1-2", "dir/with:colon/file.go:3-4", "::5-5"} {
		loc, ok := ParseLocation(input)
		require.True(t, ok, input)
		assert.Equal(t, input[:strings.LastIndex(input, ":")], loc.Path)
	}
}

func TestFormatLocation(t *testing.T) {
	got := FormatLocation("src/server.ts", []LineRange{{10, 20}, {33, 33}})
	if got != "src/server.ts:10-20,33-33" {
		t.Errorf("expected %q, got %q", "src/server.ts:10-20,33-33", got)
	}

	loc, ok := ParseLocation("src/server.ts:10-20,33")
	require.True(t, ok)
	assert.Equal(t, "src/server.ts:10-20,33-33", loc.String())
	assert.True(t, loc.Ranges[1].Single())
	assert.False(t, loc.Ranges[0].Single())
}

func TestValidLocation(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"a.go:1-5", true},
		{"a.go:10-20,33", true},
		{"C:/repo/a.go:3", true},
		{"a.go:5-5,20-10", false},
		{"a.go:0-0,3-3", false},
		{"a.go:1,,2", false},
		{"a.go:1,x", false},
		{"a.go:", false},
		{"nocolon", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidLocation(tt.input); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
