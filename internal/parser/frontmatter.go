package parser

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gubarz/virgil/internal/walkthrough"
)

// frontmatter is the decoded YAML block of a walkthrough
type frontmatter struct {
	repository *walkthrough.Repository
	metadata   walkthrough.Metadata
}

// parseFrontmatter decodes the YAML text between the "---" lines. Repository
// keys are lifted into a Repository; every other key becomes metadata in
// document order.
func parseFrontmatter(text string) (frontmatter, []string) {
	var fm frontmatter
	if strings.TrimSpace(text) == "" {
		return fm, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return fm, []string{fmt.Sprintf("Invalid YAML frontmatter: %v", err)}
	}
	if len(doc.Content) == 0 {
		return fm, nil
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return fm, []string{"Invalid YAML frontmatter: expected a mapping of keys to values"}
	}

	var warnings []string
	repo := &walkthrough.Repository{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := resolveAlias(root.Content[i])
		value := resolveAlias(root.Content[i+1])
		if keyNode.Kind != yaml.ScalarNode {
			warnings = append(warnings, fmt.Sprintf("Frontmatter key at line %d is not a plain key and was ignored", keyNode.Line))
			continue
		}
		key := keyNode.Value

		var ok bool
		switch key {
		case "remote":
			repo.Remote, ok = stringScalar(value)
		case "commit":
			repo.Commit, ok = stringScalar(value)
		case "baseBranch":
			repo.BaseBranch, ok = stringScalar(value)
		case "baseCommit":
			repo.BaseCommit, ok = stringScalar(value)
		case "pr":
			repo.PR, ok = intScalar(value)
		default:
			mv, isScalar := metadataValue(value)
			if !isScalar {
				warnings = append(warnings, fmt.Sprintf("Frontmatter key %q has a nested value and was ignored", key))
				continue
			}
			fm.metadata.Set(key, mv)
			continue
		}

		if !ok && value.ShortTag() != "!!null" {
			want := "a string"
			if key == "pr" {
				want = "a whole number"
			}
			warnings = append(warnings, fmt.Sprintf("Frontmatter key %q must be %s and was ignored", key, want))
		}
	}

	if !repo.IsEmpty() {
		fm.repository = repo
	}
	return fm, warnings
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func stringScalar(n *yaml.Node) (string, bool) {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return "", false
	}
	return n.Value, true
}

// intScalar accepts YAML integers and integral floats such as 42.0
func intScalar(n *yaml.Node) (int, bool) {
	if n.Kind != yaml.ScalarNode {
		return 0, false
	}
	switch n.ShortTag() {
	case "!!int":
		var v int
		if err := n.Decode(&v); err != nil {
			return 0, false
		}
		return v, true
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}

// metadataValue converts a YAML node to a scalar metadata value. Sequences of
// scalars are joined with ", "; anything nested deeper is rejected.
func metadataValue(n *yaml.Node) (walkthrough.MetadataValue, bool) {
	switch n.Kind {
	case yaml.ScalarNode:
		return scalarValue(n), true
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode {
				return walkthrough.MetadataValue{}, false
			}
			items = append(items, scalarValue(item).String())
		}
		return walkthrough.StringValue(strings.Join(items, ", ")), true
	default:
		return walkthrough.MetadataValue{}, false
	}
}

func scalarValue(n *yaml.Node) walkthrough.MetadataValue {
	switch n.ShortTag() {
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return walkthrough.NumberValue(f)
		}
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return walkthrough.BoolValue(b)
		}
	case "!!null":
		return walkthrough.StringValue("")
	}
	return walkthrough.StringValue(n.Value)
}
