package harness

// StepTrace records how one input line resolved.
type StepTrace struct {
	Input      string   `json:"input"`
	RequestID  string   `json:"request_id"`
	Outcome    string   `json:"outcome"`
	Candidates []string `json:"candidates"`
	Match      []string `json:"match,omitempty"`
	Owners     []string `json:"owners,omitempty"`
	Args       string   `json:"args,omitempty"`
	Qualifier  string   `json:"qualifier,omitempty"`
	Fallback   string   `json:"fallback,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step expectation and assertion holds.
	Pass bool `json:"pass"`

	// Trace holds one entry per step, in order.
	Trace []StepTrace `json:"trace"`

	// MergedKey, MergeType and MergedKeys describe the set every step was
	// resolved against.
	MergedKey  string   `json:"merged_key"`
	MergeType  string   `json:"merge_type"`
	MergedKeys []string `json:"merged_keys"`

	// Warnings lists definition findings that did not stop the run.
	Warnings []string `json:"warnings,omitempty"`

	// Errors contains failed expectations and assertions.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Trace:      []StepTrace{},
		MergedKeys: []string{},
		Errors:     []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step to the trace.
func (r *Result) AddStep(step StepTrace) {
	r.Trace = append(r.Trace, step)
}
