package gitstate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/gubarz/virgil/internal/walkthrough"
)

// ============================================================================
// Runner Interface
// ============================================================================

// Runner executes an external command in a directory and returns its
// trimmed stdout
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// execRunner implements Runner with os/exec
type execRunner struct{}

// NewRunner returns a Runner backed by real processes
func NewRunner() Runner {
	return execRunner{}
}

// Run executes the command and returns stdout
func (execRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s error: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}

// ============================================================================
// Provider
// ============================================================================

// Provider reads repository details of a working tree. It satisfies
// parser.GitState; failures are reported as empty values.
type Provider struct {
	runner  Runner
	dir     string
	timeout time.Duration
}

// NewProvider creates a provider for the working tree containing dir
func NewProvider(runner Runner, dir string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Provider{runner: runner, dir: dir, timeout: timeout}
}

func (p *Provider) git(args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	out, err := p.runner.Run(ctx, p.dir, "git", args...)
	if err != nil {
		return ""
	}
	return out
}

// Remote returns the url of the origin remote
func (p *Provider) Remote() string {
	return p.git("remote", "get-url", "origin")
}

// Commit returns the full hash of HEAD
func (p *Provider) Commit() string {
	return p.git("rev-parse", "HEAD")
}

// ============================================================================
// Base resolution
// ============================================================================

// BaseSource names the repository field a base commit came from
type BaseSource string

const (
	SourceNone       BaseSource = ""
	SourceBaseCommit BaseSource = "baseCommit"
	SourceBaseBranch BaseSource = "baseBranch"
	SourcePR         BaseSource = "pr"
)

// ErrUnresolved is returned when a base reference is configured but cannot
// be turned into a commit
var ErrUnresolved = errors.New("base reference could not be resolved")

// defaultBranches are tried, in order, as merge-base targets for a PR
// when the GitHub CLI cannot name the PR's base branch
var defaultBranches = []string{"main", "master", "develop"}

// BaseRef is a resolved diff base
type BaseRef struct {
	Commit string     `json:"commit"`
	Source BaseSource `json:"source"`
}

// Resolver turns repository base references into commits
type Resolver struct {
	runner Runner
	dir    string
}

// NewResolver creates a resolver operating in dir
func NewResolver(runner Runner, dir string) *Resolver {
	return &Resolver{runner: runner, dir: dir}
}

// ResolveBase resolves the highest-priority base reference of repo:
// baseCommit, then baseBranch, then pr. A repository without base
// references yields a zero BaseRef and no error. When the chosen reference
// cannot be resolved, the returned BaseRef still names its source.
func (r *Resolver) ResolveBase(ctx context.Context, repo *walkthrough.Repository) (BaseRef, error) {
	switch {
	case repo == nil:
		return BaseRef{}, nil

	case repo.BaseCommit != "":
		commit := r.verify(ctx, repo.BaseCommit)
		if commit == "" {
			return BaseRef{Source: SourceBaseCommit}, fmt.Errorf("invalid base commit %s: %w", repo.BaseCommit, ErrUnresolved)
		}
		return BaseRef{Commit: commit, Source: SourceBaseCommit}, nil

	case repo.BaseBranch != "":
		commit := r.resolveBranch(ctx, repo.BaseBranch)
		if commit == "" {
			return BaseRef{Source: SourceBaseBranch}, fmt.Errorf("cannot resolve branch %s: %w", repo.BaseBranch, ErrUnresolved)
		}
		return BaseRef{Commit: commit, Source: SourceBaseBranch}, nil

	case repo.PR != 0:
		commit := r.resolvePR(ctx, repo.PR)
		if commit == "" {
			return BaseRef{Source: SourcePR}, fmt.Errorf("cannot determine base for PR #%d: %w", repo.PR, ErrUnresolved)
		}
		return BaseRef{Commit: commit, Source: SourcePR}, nil
	}

	return BaseRef{}, nil
}

func (r *Resolver) run(ctx context.Context, name string, args ...string) string {
	out, err := r.runner.Run(ctx, r.dir, name, args...)
	if err != nil {
		return ""
	}
	return out
}

func (r *Resolver) verify(ctx context.Context, ref string) string {
	return r.run(ctx, "git", "rev-parse", "--verify", ref)
}

// resolveBranch prefers a local branch and falls back to origin
func (r *Resolver) resolveBranch(ctx context.Context, branch string) string {
	if commit := r.verify(ctx, branch); commit != "" {
		return commit
	}
	return r.verify(ctx, "origin/"+branch)
}

// resolvePR asks the GitHub CLI for the PR's base branch, then falls back to
// the merge-base of HEAD with a default branch
func (r *Resolver) resolvePR(ctx context.Context, pr int) string {
	branch := r.run(ctx, "gh", "pr", "view", strconv.Itoa(pr), "--json", "baseRefName", "-q", ".baseRefName")
	if branch != "" {
		if commit := r.resolveBranch(ctx, branch); commit != "" {
			return commit
		}
	}

	for _, b := range defaultBranches {
		if commit := r.run(ctx, "git", "merge-base", "HEAD", b); commit != "" {
			return commit
		}
	}
	return ""
}

// ShortCommit abbreviates a commit hash to seven characters
func ShortCommit(commit string) string {
	if len(commit) <= 7 {
		return commit
	}
	return commit[:7]
}
