package walkthrough

// StepType classifies a step by which locations it carries
type StepType string

const (
	StepTypeDiff          StepType = "diff"
	StepTypePointInTime   StepType = "point-in-time"
	StepTypeBaseOnly      StepType = "base-only"
	StepTypeInformational StepType = "informational"
)

// Classify derives the step type from the presence of location and base_location.
// Steps are mutated by other components (comments, edits), so callers must not cache the result.
func Classify(step *Step) StepType {
	hasHead := step.Location != ""
	hasBase := step.BaseLocation != ""

	switch {
	case hasHead && hasBase:
		return StepTypeDiff
	case hasHead:
		return StepTypePointInTime
	case hasBase:
		return StepTypeBaseOnly
	default:
		return StepTypeInformational
	}
}

// Type returns the step's current classification
func (s *Step) Type() StepType {
	return Classify(s)
}
