package logic

// TraceStep records one rule evaluation during product selection.
type TraceStep struct {
	Stage   string            `json:"stage"`
	Matched bool              `json:"matched"`
	Details map[string]string `json:"details,omitempty"`
}

// SelectionTrace captures the ordered list of rules a selector evaluated.
type SelectionTrace struct {
	Steps []TraceStep `json:"steps"`
}

// AddStep appends a trace entry for the given rule.
func (t *SelectionTrace) AddStep(stage string, matched bool) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, TraceStep{Stage: stage, Matched: matched})
}

// AddStepWithDetails appends a trace entry with additional context.
func (t *SelectionTrace) AddStepWithDetails(stage string, matched bool, details map[string]string) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, TraceStep{Stage: stage, Matched: matched, Details: details})
}

// Matched returns the stage of the first matching step, or "".
func (t *SelectionTrace) Matched() string {
	if t == nil {
		return ""
	}
	for _, s := range t.Steps {
		if s.Matched {
			return s.Stage
		}
	}
	return ""
}
