package types

import (
	"fmt"
	"strings"
)

// Phase identifies the compiler phase that produced a diagnostic.
type Phase string

const (
	// PhaseParse covers document deserialization and graph construction.
	PhaseParse Phase = "Parse"
	// PhaseValidate covers structural and per-node pre-validation of the raw graph.
	PhaseValidate Phase = "Validate"
	// PhaseLower covers topological ordering and graph-to-IR structuring.
	PhaseLower Phase = "Lower"
	// PhaseIRValidate covers invariant checks over the fully-built IR tree.
	PhaseIRValidate Phase = "IRValidate"
	// PhaseCodegen is reserved for the external emitter.
	PhaseCodegen Phase = "Codegen"
)

// Diagnostic is the unified error value shared by every compiler phase.
// Lowering failures abort the pipeline; IR validation failures are collected
// and reported together. Both use this shape so callers render them uniformly.
type Diagnostic struct {
	Code    string `json:"code"`
	Phase   Phase  `json:"phase"`
	Message string `json:"message"`
	// NodeID is the graph node or IR step the diagnostic applies to.
	// Empty for whole-workflow diagnostics.
	NodeID string `json:"node_id,omitempty"`
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	if d.NodeID != "" {
		return fmt.Sprintf("[%s:%s] %s (node '%s')", d.Phase, d.Code, d.Message, d.NodeID)
	}
	return fmt.Sprintf("[%s:%s] %s", d.Phase, d.Code, d.Message)
}

// Parse creates a parse-phase diagnostic.
func Parse(code, message string) Diagnostic {
	return Diagnostic{Code: code, Phase: PhaseParse, Message: message}
}

// Validate creates a graph-validation diagnostic.
func Validate(code, message, nodeID string) Diagnostic {
	return Diagnostic{Code: code, Phase: PhaseValidate, Message: message, NodeID: nodeID}
}

// Lower creates a lowering diagnostic.
func Lower(code, message, nodeID string) Diagnostic {
	return Diagnostic{Code: code, Phase: PhaseLower, Message: message, NodeID: nodeID}
}

// IRValidate creates an IR-validation diagnostic.
func IRValidate(code, message, stepID string) Diagnostic {
	return Diagnostic{Code: code, Phase: PhaseIRValidate, Message: message, NodeID: stepID}
}

// Diagnostics is a list of diagnostics from one or more phases.
type Diagnostics []Diagnostic

// HasErrors reports whether the list is non-empty.
func (ds Diagnostics) HasErrors() bool { return len(ds) > 0 }

// Error joins all diagnostics into a single message, one per line.
func (ds Diagnostics) Error() string {
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = d.Error()
	}
	return strings.Join(msgs, "\n")
}

// Codes returns the diagnostic codes in order, mainly for tests and logs.
func (ds Diagnostics) Codes() []string {
	codes := make([]string, len(ds))
	for i, d := range ds {
		codes[i] = d.Code
	}
	return codes
}
