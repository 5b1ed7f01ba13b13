package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/gubarz/virgil/internal/config"
	"github.com/gubarz/virgil/internal/gitstate"
	"github.com/gubarz/virgil/internal/parser"
	"github.com/gubarz/virgil/internal/walkthrough"
)

// gitProvider returns repository inference for the tree containing dir, or
// nil when inference is disabled
func gitProvider(dir string) *gitstate.Provider {
	if !config.GetInferGit() {
		return nil
	}
	return gitstate.NewProvider(gitstate.NewRunner(), dir, config.GetGitTimeout())
}

func parserOptions(dir string) parser.Options {
	if p := gitProvider(dir); p != nil {
		return parser.Options{GitState: p}
	}
	return parser.Options{}
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// loadWalkthrough reads a walkthrough from either a Markdown source, which
// is compiled, or a walkthrough JSON file
func loadWalkthrough(path string) (*walkthrough.Walkthrough, []string, error) {
	if !isMarkdown(path) {
		wt, err := walkthrough.Load(path)
		return wt, nil, err
	}

	p := parser.NewParser(parserOptions(filepath.Dir(path)), 1)
	res, err := p.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	return res.Walkthrough, res.Warnings, nil
}

// printWarnings writes warnings to w, highlighted when w is a terminal
func printWarnings(w io.Writer, source string, warnings []string) {
	if len(warnings) == 0 {
		return
	}

	label := "warning:"
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		label = lipgloss.NewStyle().Foreground(lipgloss.Color(config.GetColorBase())).Render(label)
	}
	for _, warning := range warnings {
		fmt.Fprintf(w, "%s %s: %s\n", label, source, warning)
	}
}
