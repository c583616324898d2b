package mcp

// Result is the successful branch of an Outcome.
// ContextUpdates are advisory and merged by the caller after all agents finish.
type Result struct {
	Data           map[string]any `json:"data"`
	ContextUpdates map[string]any `json:"context_updates,omitempty"`
}

// NewResult returns a new Result
func NewResult(data map[string]any) *Result {
	if data == nil {
		data = make(map[string]any)
	}
	return &Result{
		Data: data,
	}
}

// WithUpdate records a proposed context update and returns the Result
func (r *Result) WithUpdate(key string, value any) *Result {
	if r.ContextUpdates == nil {
		r.ContextUpdates = make(map[string]any)
	}
	r.ContextUpdates[key] = value
	return r
}

// Outcome is a tagged union, exactly one of Result or Failure is set
type Outcome struct {
	Result  *Result  `json:"result,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// Succeeded returns a successful Outcome
func Succeeded(r *Result) Outcome {
	if r == nil {
		r = NewResult(nil)
	}
	return Outcome{Result: r}
}

// Failed returns a failed Outcome
func Failed(f *Failure) Outcome {
	if f == nil {
		f = NewFailure(AgentCrashed, "unknown failure")
	}
	return Outcome{Failure: f}
}

// Ok reports whether the Outcome is a success
func (o Outcome) Ok() bool {
	return o.Failure == nil && o.Result != nil
}
