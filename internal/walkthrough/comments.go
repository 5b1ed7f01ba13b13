package walkthrough

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AddComment appends a new comment to the step with the given id and
// returns it. Comments are never edited or removed here.
func AddComment(wt *Walkthrough, stepID int, author, body string) (Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Comment{}, fmt.Errorf("comment body is empty")
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = "anonymous"
	}

	step, err := wt.StepByID(stepID)
	if err != nil {
		return Comment{}, fmt.Errorf("step %d: %w", stepID, err)
	}

	c := Comment{
		ID:     uuid.NewString(),
		Author: author,
		Body:   body,
	}
	step.Comments = append(step.Comments, c)
	return c, nil
}
