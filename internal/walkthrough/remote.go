package walkthrough

import (
	"regexp"
	"strings"
)

var (
	trailingSlashes = regexp.MustCompile(`/+$`)
	sshRemote       = regexp.MustCompile(`^git@([^:]+):(.+)$`)
	remoteScheme    = regexp.MustCompile(`^(https?://|git://)`)
	remoteUserInfo  = regexp.MustCompile(`^[^@]+@`)
)

// NormalizeRemoteURL canonicalizes a git remote so SSH, HTTPS and bare
// forms of the same repository compare equal:
//
//	git@github.com:org/repo.git  -> github.com/org/repo
//	https://github.com/org/repo/ -> github.com/org/repo
//
// Every stage only shortens the string, so the pipeline is repeated until it
// reaches a fixed point; this keeps the result idempotent for inputs such as
// "repo.git.git" or "repo.git/".
func NormalizeRemoteURL(url string) string {
	normalized := strings.ToLower(strings.TrimSpace(url))
	for {
		next := normalizeOnce(normalized)
		if next == normalized {
			return normalized
		}
		normalized = next
	}
}

func normalizeOnce(normalized string) string {
	normalized = trailingSlashes.ReplaceAllString(normalized, "")
	normalized = strings.TrimSuffix(normalized, ".git")

	if m := sshRemote.FindStringSubmatch(normalized); m != nil {
		normalized = m[1] + "/" + m[2]
	}

	normalized = remoteScheme.ReplaceAllString(normalized, "")
	// Runs after the SSH rewrite so "git@" is never mistaken for user info
	normalized = remoteUserInfo.ReplaceAllString(normalized, "")
	return normalized
}

// SameRemote reports whether two remotes point at the same repository
func SameRemote(a, b string) bool {
	return NormalizeRemoteURL(a) == NormalizeRemoteURL(b)
}
