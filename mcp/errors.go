package mcp

import "fmt"

// ErrorKind is the failure taxonomy shared by every agent outcome
type ErrorKind string

const (
	// ClassifierUnavailable the embedding backend could not score a query
	ClassifierUnavailable ErrorKind = "ClassifierUnavailable"
	// AgentCrashed an agent returned an error or panicked
	AgentCrashed ErrorKind = "AgentCrashed"
	// Timeout an agent exceeded its budget
	Timeout ErrorKind = "Timeout"
	// RefinementFailed the text refinement capability failed
	RefinementFailed ErrorKind = "RefinementFailed"
)

var (
	// ErrClassifierUnavailable matches any failure of kind ClassifierUnavailable with errors.Is
	ErrClassifierUnavailable = &Failure{Kind: ClassifierUnavailable, Message: "classifier unavailable"}
	// ErrRefinementFailed matches any failure of kind RefinementFailed with errors.Is
	ErrRefinementFailed = &Failure{Kind: RefinementFailed, Message: "refinement failed"}
	// ErrAgentCrashed matches any failure of kind AgentCrashed with errors.Is
	ErrAgentCrashed = &Failure{Kind: AgentCrashed, Message: "agent crashed"}
	// ErrTimeout matches any failure of kind Timeout with errors.Is
	ErrTimeout = &Failure{Kind: Timeout, Message: "agent timed out"}
)

// Failure is the failed branch of an Outcome
type Failure struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// NewFailure returns a new Failure
func NewFailure(kind ErrorKind, format string, args ...any) *Failure {
	return &Failure{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements error interface
func (f *Failure) Error() string {
	if f.Message == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Is reports whether target is a Failure of the same kind
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok || t == nil {
		return false
	}
	return t.Kind == f.Kind
}
