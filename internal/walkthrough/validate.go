package walkthrough

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate checks struct tags on the persisted model
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateOptions supplies context for checks that need the workspace
type ValidateOptions struct {
	// WorkspaceRemote is the local origin URL; empty skips the remote check
	WorkspaceRemote string
}

// Validate reports problems in a walkthrough as human-readable warnings.
// It never fails: a document with warnings is still usable.
func Validate(wt *Walkthrough, opts ValidateOptions) []string {
	var warnings []string

	warnings = append(warnings, structWarnings(wt)...)
	warnings = append(warnings, hierarchyWarnings(wt.Steps)...)

	for _, step := range wt.Steps {
		if step.Location != "" {
			if !ValidLocation(step.Location) {
				warnings = append(warnings, fmt.Sprintf("Step %d %q has invalid location: %s", step.ID, step.Title, step.Location))
			}
		}
		if step.BaseLocation != "" {
			if !ValidLocation(step.BaseLocation) {
				warnings = append(warnings, fmt.Sprintf("Step %d %q has invalid base_location: %s", step.ID, step.Title, step.BaseLocation))
			}
		}
	}

	refs := wt.Repository.BaseRefs()
	if len(refs) > 1 {
		warnings = append(warnings, fmt.Sprintf(
			"Multiple base references specified (%s). Using %s (priority: baseCommit > baseBranch > pr).",
			strings.Join(refs, ", "), refs[0]))
	}
	if len(refs) == 0 {
		for _, step := range wt.Steps {
			if step.BaseLocation != "" {
				warnings = append(warnings, fmt.Sprintf(
					"Step %d %q has base_location but no base reference is configured. Add baseCommit, baseBranch, or pr to repository.",
					step.ID, step.Title))
			}
		}
	}

	if opts.WorkspaceRemote != "" && wt.Repository != nil && wt.Repository.Remote != "" {
		if !SameRemote(opts.WorkspaceRemote, wt.Repository.Remote) {
			warnings = append(warnings, fmt.Sprintf(
				"Walkthrough remote %s does not match workspace origin %s",
				wt.Repository.Remote, opts.WorkspaceRemote))
		}
	}

	return warnings
}

func structWarnings(wt *Walkthrough) []string {
	err := validate.Struct(wt)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	warnings := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		warnings = append(warnings, fmt.Sprintf("%s is %s", trimNamespace(fe.Namespace()), fe.Tag()))
	}
	return warnings
}

// trimNamespace turns "Walkthrough.Steps[0].Title" into "Steps[0].Title"
func trimNamespace(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func hierarchyWarnings(steps []Step) []string {
	var warnings []string

	seen := make(map[int]bool, len(steps))
	for _, step := range steps {
		if seen[step.ID] {
			warnings = append(warnings, fmt.Sprintf("Duplicate step id %d (%q); the first step with this id is used as parent", step.ID, step.Title))
		}
		seen[step.ID] = true
	}

	for _, step := range steps {
		if step.ParentID != nil && !seen[*step.ParentID] {
			warnings = append(warnings, fmt.Sprintf("Step %d %q references missing parent %d; shown as top-level", step.ID, step.Title, *step.ParentID))
		}
	}

	for _, pos := range CycleBreaks(steps) {
		step := steps[pos]
		warnings = append(warnings, fmt.Sprintf("Step %d %q is part of a parent cycle; shown as top-level", step.ID, step.Title))
	}
	return warnings
}
