package harness

import (
	"github.com/myurch/mock-rel/internal/ir"
)

// StepRecord is the outcome of one dispatched action.
type StepRecord struct {
	Index   int    `json:"index"`
	Type    string `json:"type"`
	Model   string `json:"model"`
	Changed bool   `json:"changed"`

	// Error is the StoreError code (or message) when the action failed.
	Error string `json:"error,omitempty"`
}

// ResolvedSnapshot is the value a resolve assertion observed.
type ResolvedSnapshot struct {
	Assertion int    `json:"assertion"`
	Source    string `json:"source"`
	Model     string `json:"model"`
	ID        any    `json:"id,omitempty"`
	Value     any    `json:"value"`

	// Hash fingerprints Value. Empty when a Construct hook produced a
	// value canonical JSON cannot encode.
	Hash string `json:"hash,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every action met its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	// Steps records each action in order.
	Steps []StepRecord `json:"steps"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Resolved holds the graph each resolve assertion saw.
	Resolved []ResolvedSnapshot `json:"resolved"`

	// State is the final host state.
	State ir.State `json:"-"`

	// StateHash fingerprints State.
	StateHash string `json:"state_hash"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Steps:    []StepRecord{},
		Errors:   []string{},
		Resolved: []ResolvedSnapshot{},
		State:    ir.State{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends an action outcome.
func (r *Result) AddStep(step StepRecord) {
	r.Steps = append(r.Steps, step)
}

// AddResolved appends a resolve assertion's observed value.
func (r *Result) AddResolved(snap ResolvedSnapshot) {
	r.Resolved = append(r.Resolved, snap)
}
