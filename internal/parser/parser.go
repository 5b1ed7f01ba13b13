package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gubarz/virgil/internal/walkthrough"
)

// UntitledTitle is used when a document has no "# " heading
const UntitledTitle = "Untitled Walkthrough"

// GitState supplies repository details when the frontmatter has none.
// Empty strings mean unknown.
type GitState interface {
	Remote() string
	Commit() string
}

// Options controls a single compilation
type Options struct {
	GitState GitState // optional
}

// Result is a compiled walkthrough plus everything that looked wrong in the source
type Result struct {
	Walkthrough *walkthrough.Walkthrough `json:"walkthrough"`
	Warnings    []string                 `json:"warnings"`
}

// Parse compiles a Markdown walkthrough. It never fails: every problem in
// the source becomes a warning and a best-effort walkthrough is returned.
func Parse(markdown string, opts Options) Result {
	s := newScanner(markdown)

	title := s.scanTitle()
	fm := s.scanFrontmatter()
	description := s.scanDescription()
	steps := s.scanSteps()

	if len(steps) == 0 {
		s.warn("No steps found (no ## headings)")
	}

	repo := fm.repository
	if repo == nil {
		repo = inferRepository(opts.GitState)
	}

	return Result{
		Walkthrough: &walkthrough.Walkthrough{
			Title:       title,
			Description: description,
			Repository:  repo,
			Metadata:    fm.metadata,
			Steps:       steps,
		},
		Warnings: s.warningList(),
	}
}

func inferRepository(gs GitState) *walkthrough.Repository {
	if gs == nil {
		return nil
	}
	remote, commit := gs.Remote(), gs.Commit()
	if remote == "" && commit == "" {
		return nil
	}
	return &walkthrough.Repository{Remote: remote, Commit: commit}
}

// ============================================================================
// Scanner
// ============================================================================

// scanner walks the document top to bottom; each phase resumes where the
// previous one stopped
type scanner struct {
	lines    []string
	pos      int
	warnings []string
}

func newScanner(markdown string) *scanner {
	normalized := strings.TrimPrefix(markdown, "\ufeff")
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	return &scanner{lines: strings.Split(normalized, "\n")}
}

func (s *scanner) warn(msg string) {
	s.warnings = append(s.warnings, msg)
}

func (s *scanner) warningList() []string {
	if s.warnings == nil {
		return []string{}
	}
	return s.warnings
}

func (s *scanner) done() bool {
	return s.pos >= len(s.lines)
}

func (s *scanner) current() string {
	return strings.TrimSpace(s.lines[s.pos])
}

func (s *scanner) skipBlank() {
	for !s.done() && s.current() == "" {
		s.pos++
	}
}

func isStepHeading(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "## ")
}

// scanTitle finds the first "# " heading. Without one, the scan restarts at
// the top so the rest of the document is still compiled.
func (s *scanner) scanTitle() string {
	for !s.done() {
		line := s.current()
		s.pos++
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}

	s.warn(fmt.Sprintf("No title found (first # heading), using %q", UntitledTitle))
	s.pos = 0
	return UntitledTitle
}

// scanFrontmatter reads a "---" delimited YAML block. An unterminated block
// is not consumed: the scan returns to the opening delimiter.
func (s *scanner) scanFrontmatter() frontmatter {
	s.skipBlank()
	if s.done() || s.current() != "---" {
		return frontmatter{}
	}

	open := s.pos
	s.pos++
	var block []string
	for !s.done() && s.current() != "---" {
		block = append(block, s.lines[s.pos])
		s.pos++
	}

	if s.done() {
		s.warn("YAML frontmatter not properly closed (missing closing ---)")
		s.pos = open
		return frontmatter{}
	}
	s.pos++ // closing ---

	fm, warnings := parseFrontmatter(strings.Join(block, "\n"))
	for _, w := range warnings {
		s.warn(w)
	}
	return fm
}

// scanDescription collects everything up to the first step heading
func (s *scanner) scanDescription() string {
	var lines []string
	for !s.done() && !isStepHeading(s.lines[s.pos]) {
		lines = append(lines, s.lines[s.pos])
		s.pos++
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// scanSteps reads "## " sections until the end of the document
func (s *scanner) scanSteps() []walkthrough.Step {
	steps := make([]walkthrough.Step, 0)
	nextID := 1

	for !s.done() {
		if !isStepHeading(s.lines[s.pos]) {
			s.pos++
			continue
		}

		title := strings.TrimSpace(s.current()[3:])
		s.pos++
		s.skipBlank()

		head, base := s.scanLocationLinks(title)
		s.skipBlank()

		var body []string
		for !s.done() && !isStepHeading(s.lines[s.pos]) {
			body = append(body, s.lines[s.pos])
			s.pos++
		}
		bodyText := strings.TrimSpace(strings.Join(body, "\n"))
		s.checkBodyLinks(title, bodyText)

		steps = append(steps, walkthrough.Step{
			ID:           nextID,
			Title:        title,
			Body:         bodyText,
			Location:     head,
			BaseLocation: base,
		})
		nextID++
	}
	return steps
}

// scanLocationLinks consumes up to two location-link lines directly below a
// step heading, in either order
func (s *scanner) scanLocationLinks(stepTitle string) (head, base string) {
	for attempt := 0; attempt < 2 && !s.done(); attempt++ {
		line := s.current()
		if line == "" {
			break
		}

		link, ok := matchLocationLine(line)
		if !ok {
			break
		}
		if !walkthrough.ValidLocation(link.location) {
			s.warn(fmt.Sprintf("Invalid location format in step %q: %s", stepTitle, link.location))
			break
		}

		switch {
		case link.isBase && base != "":
			s.warn(fmt.Sprintf("Multiple base location links in step %q. Using first one.", stepTitle))
		case link.isBase:
			base = link.location
		case head != "":
			s.warn(fmt.Sprintf("Multiple location links in step %q. Using first one.", stepTitle))
		default:
			head = link.location
		}

		s.pos++
		s.skipBlank()
	}
	return head, base
}

// checkBodyLinks warns about location links that appear inside a step body
func (s *scanner) checkBodyLinks(stepTitle, body string) {
	if body == "" {
		return
	}
	for _, link := range bodyLocationLinks(body) {
		kind := "Location"
		if link.isBase {
			kind = "Base location"
		}
		s.warn(fmt.Sprintf(
			"%s link found in step body for %q: %s will be ignored. Only location links immediately after the step title are used.",
			kind, stepTitle, link.raw))
	}
}

// ============================================================================
// Files and directories
// ============================================================================

// FileResult is the compilation result for one source file
type FileResult struct {
	Path string
	Result
}

// Parser compiles walkthrough files from disk
type Parser struct {
	opts        Options
	concurrency int
}

// NewParser creates a parser. concurrency bounds ParseDirectory; values
// below 1 mean one file at a time.
func NewParser(opts Options, concurrency int) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{opts: opts, concurrency: concurrency}
}

// ParseFile compiles a single markdown file
func (p *Parser) ParseFile(path string) (*FileResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &FileResult{Path: path, Result: Parse(string(content), p.opts)}, nil
}

// ParseDirectory compiles every .md file under dir. Results follow the
// directory walk order.
func (p *Parser) ParseDirectory(ctx context.Context, dir string) ([]FileResult, error) {
	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(path), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := p.ParseFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
