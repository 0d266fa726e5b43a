package harness

// StepTrace records one executed step. It feeds assertion failure
// output and, via Result, the final golden snapshot.
type StepTrace struct {
	Op       string `json:"op"` // "upsert", "toggle", "seed" or "advance"
	Date     string `json:"date,omitempty"`
	Task     string `json:"task,omitempty"`
	Activity string `json:"activity,omitempty"`

	// Completed is the flag state after the step (upsert, toggle).
	Completed *bool `json:"completed,omitempty"`

	// Pairs is the number of pairs a seed step covered.
	Pairs int `json:"pairs,omitempty"`

	// Advance echoes an advance step's duration string.
	Advance string `json:"advance,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every assertion and toggle want clause held.
	Pass bool `json:"pass"`

	// Trace lists the executed steps in order.
	Trace []StepTrace `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final captures the derived views after all steps ran.
	// Used for golden comparison.
	Final *Snapshot `json:"final,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStepTrace appends one executed step to the trace.
func (r *Result) AddStepTrace(ev StepTrace) {
	r.Trace = append(r.Trace, ev)
}
