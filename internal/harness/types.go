package harness

import "github.com/roach88/mocsync/internal/mirror"

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq       int64                     `json:"seq"`
	Op        string                    `json:"op"`
	Target    string                    `json:"target,omitempty"`
	Entity    string                    `json:"entity,omitempty"`
	Value     *float32                  `json:"value,omitempty"`
	Vertices  int                       `json:"vertices,omitempty"`
	Flags     string                    `json:"flags,omitempty"`
	Snapshots []mirror.DrawableSnapshot `json:"snapshots,omitempty"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion held.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	// Used for golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addTrace appends an event.
func (r *Result) addTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
