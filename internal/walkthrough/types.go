package walkthrough

import "errors"

// ErrStepNotFound is returned when a step id does not exist in a walkthrough
var ErrStepNotFound = errors.New("step not found")

// Walkthrough is the root of a walkthrough document
type Walkthrough struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description,omitempty"`
	Repository  *Repository `json:"repository,omitempty"`
	Metadata    Metadata    `json:"metadata,omitempty"`
	Steps       []Step      `json:"steps" validate:"dive"`
}

// Step is a single unit of narration in a walkthrough
type Step struct {
	ID           int       `json:"id"`
	Title        string    `json:"title" validate:"required"`
	Body         string    `json:"body,omitempty"`
	Location     string    `json:"location,omitempty"`      // Head state, "path:start-end,start-end"
	BaseLocation string    `json:"base_location,omitempty"` // Base state, same format
	Comments     []Comment `json:"comments,omitempty" validate:"dive"`
	ParentID     *int      `json:"parentId,omitempty"` // nil for top-level steps
}

// Comment is a note attached to a step
type Comment struct {
	ID     string `json:"id" validate:"required"`
	Author string `json:"author" validate:"required"`
	Body   string `json:"body" validate:"required"`
}

// Repository anchors a walkthrough to a repository state
type Repository struct {
	Remote     string `json:"remote,omitempty"`
	Commit     string `json:"commit,omitempty"`
	BaseCommit string `json:"baseCommit,omitempty"`
	BaseBranch string `json:"baseBranch,omitempty"`
	PR         int    `json:"pr,omitempty"`
}

// BaseRefs returns the names of the base reference fields that are set,
// in priority order (baseCommit > baseBranch > pr)
func (r *Repository) BaseRefs() []string {
	if r == nil {
		return nil
	}
	var refs []string
	if r.BaseCommit != "" {
		refs = append(refs, "baseCommit")
	}
	if r.BaseBranch != "" {
		refs = append(refs, "baseBranch")
	}
	if r.PR != 0 {
		refs = append(refs, "pr")
	}
	return refs
}

// IsEmpty reports whether no repository field is set
func (r *Repository) IsEmpty() bool {
	return r == nil || (r.Remote == "" && r.Commit == "" && len(r.BaseRefs()) == 0)
}

// StepByID returns a pointer to the first step with the given id
func (w *Walkthrough) StepByID(id int) (*Step, error) {
	for i := range w.Steps {
		if w.Steps[i].ID == id {
			return &w.Steps[i], nil
		}
	}
	return nil, ErrStepNotFound
}

// IntPtr is a helper for building ParentID values
func IntPtr(v int) *int {
	return &v
}
