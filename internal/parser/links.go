package parser

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	// A location line is exactly one link: [text (10-20,33)](path)
	locationLine = regexp.MustCompile(`^\[([^\]]+)\]\(([^)]+)\)$`)
	// Line numbers sit in a parenthesized suffix of the link text
	lineNumbers = regexp.MustCompile(`\(([^()]*)\)\s*$`)
	baseLabel   = regexp.MustCompile(`(?i)^base\s*\(`)
)

// locationLink is a recognized location link
type locationLink struct {
	location string // "path:start-end,..."
	isBase   bool
}

// matchLocationLine recognizes a line consisting of a single location link
func matchLocationLine(line string) (locationLink, bool) {
	m := locationLine.FindStringSubmatch(line)
	if m == nil {
		return locationLink{}, false
	}
	return parseLocationLink(m[1], m[2])
}

// parseLocationLink turns link text and url into a location. Every entry in
// the parenthesized list must be a line or a line range; one bad entry
// rejects the whole link.
func parseLocationLink(label, url string) (locationLink, bool) {
	m := lineNumbers.FindStringSubmatch(label)
	if m == nil {
		return locationLink{}, false
	}
	list := strings.TrimSpace(m[1])
	if list == "" {
		return locationLink{}, false
	}

	var ranges []string
	for _, token := range strings.Split(list, ",") {
		token = strings.TrimSpace(token)
		startStr, endStr, isRange := strings.Cut(token, "-")
		if !isRange {
			endStr = startStr
		}
		start, err := strconv.Atoi(strings.TrimSpace(startStr))
		if err != nil {
			return locationLink{}, false
		}
		end, err := strconv.Atoi(strings.TrimSpace(endStr))
		if err != nil {
			return locationLink{}, false
		}
		ranges = append(ranges, strconv.Itoa(start)+"-"+strconv.Itoa(end))
	}

	return locationLink{
		location: url + ":" + strings.Join(ranges, ","),
		isBase:   baseLabel.MatchString(strings.TrimSpace(label)),
	}, true
}

// bodyLink is a location-looking link found inside a step body
type bodyLink struct {
	raw    string
	isBase bool
}

// bodyLocationLinks finds links in a step body that would be location links
// if they followed the heading. Links in code blocks and code spans are not
// links to goldmark and are skipped.
func bodyLocationLinks(body string) []bodyLink {
	src := []byte(body)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var found []bodyLink
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}

		label := inlineText(link, src)
		dest := string(link.Destination)
		if ll, ok := parseLocationLink(label, dest); ok {
			found = append(found, bodyLink{
				raw:    "[" + label + "](" + dest + ")",
				isBase: ll.isBase,
			})
		}
		return ast.WalkSkipChildren, nil
	})
	return found
}

// inlineText collects the literal text under an inline node
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}
