package ui

import (
	"fmt"
	"strings"

	"github.com/gubarz/virgil/internal/walkthrough"
)

// FormatTree renders the navigation order of a walkthrough, one step per
// line, indented by depth. styled applies the configured colors.
func FormatTree(wt *walkthrough.Walkthrough, styled bool) string {
	forest := walkthrough.BuildTree(wt.Steps)
	flat := walkthrough.Flatten(forest)
	depths := walkthrough.Depths(walkthrough.BuildNavigationMap(forest, flat))

	render := func(style interface{ Render(...string) string }, s string) string {
		if !styled {
			return s
		}
		return style.Render(s)
	}

	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(render(styles.DetailTitle, wt.Title))
	b.WriteString("\n")

	for i, step := range flat {
		b.WriteString(strings.Repeat("  ", depths[i]+1))
		fmt.Fprintf(b, "%d. ", step.ID)
		b.WriteString(render(styles.Title, step.Title))
		b.WriteString(" ")
		b.WriteString(render(styles.TypeStyle(step.Type()), "["+string(step.Type())+"]"))
		if step.Location != "" {
			b.WriteString(" ")
			b.WriteString(render(styles.Location, step.Location))
		}
		if step.BaseLocation != "" {
			b.WriteString(" ")
			b.WriteString(render(styles.Base, "base "+step.BaseLocation))
		}
		b.WriteString("\n")
	}
	return b.String()
}
