// Package transform implements the rule-based traversal and dispatch engine
// that applies parametric UV transforms to a layer tree.
//
// The engine walks an externally-owned forest of heterogeneous nodes,
// classifies each node against an ordered chain of handlers, applies a
// numeric mutation when a handler accepts the node, and aggregates one
// terminal outcome per node keyed by its full hierarchical path. Failures in
// one branch never abort traversal of siblings.
package transform

import "fmt"

// ValidationStatus is the three-way outcome of classifying a node against
// one handler. The three states are deliberately distinct from errors:
// "not my category" and "my category but untouchable" must not be conflated
// with application failures.
type ValidationStatus int

const (
	// ValidationAccepted means the handler claims the node and will mutate it.
	ValidationAccepted ValidationStatus = iota
	// ValidationSkipped means the node is outside this handler's category;
	// the next handler in the chain gets a look.
	ValidationSkipped
	// ValidationRejected means the node is in this handler's category but
	// must not be touched. Rejection is categorical: the chain stops.
	ValidationRejected
)

func (s ValidationStatus) String() string {
	switch s {
	case ValidationAccepted:
		return "accepted"
	case ValidationSkipped:
		return "skipped"
	default:
		return "rejected"
	}
}

// Validation is one handler's classification of one node.
type Validation struct {
	Status  ValidationStatus
	Message string
}

// Accept builds an accepted validation.
func Accept() Validation {
	return Validation{Status: ValidationAccepted, Message: "OK"}
}

// Skip builds a skipped validation with a reason.
func Skip(reason string) Validation {
	return Validation{Status: ValidationSkipped, Message: reason}
}

// Skipf builds a skipped validation with a formatted reason.
func Skipf(format string, args ...any) Validation {
	return Skip(fmt.Sprintf(format, args...))
}

// Reject builds a rejected validation with a reason.
func Reject(reason string) Validation {
	return Validation{Status: ValidationRejected, Message: reason}
}

// Rejectf builds a rejected validation with a formatted reason.
func Rejectf(format string, args ...any) Validation {
	return Reject(fmt.Sprintf(format, args...))
}

// ProcessStatus is the three-way outcome of applying a handler's mutation.
type ProcessStatus int

const (
	// ProcessSuccess means at least one parameter changed on the host.
	ProcessSuccess ProcessStatus = iota
	// ProcessNoChange means the mutation computed to a no-op. Reported
	// distinctly from success so an audit can tell "edited" from "untouched".
	ProcessNoChange
	// ProcessFailure means the host raised while mutating.
	ProcessFailure
)

func (s ProcessStatus) String() string {
	switch s {
	case ProcessSuccess:
		return "success"
	case ProcessNoChange:
		return "no_change"
	default:
		return "failure"
	}
}

// Process is the outcome of one handler's mutation of one node.
type Process struct {
	Status  ProcessStatus
	Message string
}

// Changed builds a success outcome carrying the old → new diff message.
func Changed(message string) Process {
	return Process{Status: ProcessSuccess, Message: message}
}

// NoChange builds a no-op outcome.
func NoChange() Process {
	return Process{Status: ProcessNoChange, Message: "no parameters needed adjustment"}
}

// Failf builds a failure outcome with a formatted message.
func Failf(format string, args ...any) Process {
	return Process{Status: ProcessFailure, Message: fmt.Sprintf(format, args...)}
}

// ResultKind classifies a terminal per-node outcome for statistics and
// report filtering.
type ResultKind string

const (
	ResultSuccess  ResultKind = "success"
	ResultNoChange ResultKind = "no_change"
	ResultSkipped  ResultKind = "skipped"
	ResultRejected ResultKind = "rejected"
	ResultFailed   ResultKind = "failed"
)

// DispatchResult is the terminal record for one visited node. Every visited
// node produces exactly one; a node is never silently dropped.
//
// The UI renders it as: [status icon] [full path]: [Title] / [Detail].
type DispatchResult struct {
	// OK is true for success and no-change outcomes.
	OK bool
	// Kind refines OK for statistics and filtering.
	Kind ResultKind
	// Handler names the handler that decided the outcome; empty when the
	// chain was exhausted without a decision.
	Handler string
	// Title is the one-line outcome summary.
	Title string
	// Detail carries the reason or the old → new parameter diff.
	Detail string
}
