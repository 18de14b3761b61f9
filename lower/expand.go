package lower

import (
	"github.com/BaSui01/flowc/graph"
	"github.com/BaSui01/flowc/ir"
)

// ExpandedStep is one primitive step produced by expanding a convenience
// node. Expanded steps use the `{nodeId}___{sub}` ID convention.
type ExpandedStep struct {
	ID           string
	SourceNodeID string
	Label        string
	Op           ir.Operation
	Output       *ir.OutputBinding
}

// Expander turns convenience nodes into ordered primitive steps. Convenience
// kinds (token mint/burn/transfer, KYC and balance checks) exist in the
// document model but only compile through an Expander; without one they are
// rejected during lowering.
type Expander interface {
	// Expand returns the primitive steps for a convenience node, or false
	// when the node is not one this expander handles.
	Expand(n *graph.Node, idMap map[string]string) ([]ExpandedStep, bool)
	// OutputStepID returns the expanded step whose output downstream
	// references to the original node should resolve to.
	OutputStepID(n *graph.Node) (string, bool)
}

// NopExpander expands nothing. It is the default.
type NopExpander struct{}

func (NopExpander) Expand(*graph.Node, map[string]string) ([]ExpandedStep, bool) {
	return nil, false
}

func (NopExpander) OutputStepID(*graph.Node) (string, bool) {
	return "", false
}
