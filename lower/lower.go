package lower

import (
	"errors"

	"github.com/BaSui01/flowc/graph"
	"github.com/BaSui01/flowc/ir"
	"github.com/BaSui01/flowc/types"
)

// Options tune the lowering pass.
type Options struct {
	// Expander substitutes primitive steps for convenience node kinds.
	// Nil means no expansion; convenience nodes then fail with L003.
	Expander Expander
	// DefaultReturnValue is the literal used by synthesized return steps
	// when the leaf node carries no returnExpression setting.
	DefaultReturnValue string
}

func (o Options) withDefaults() Options {
	if o.Expander == nil {
		o.Expander = NopExpander{}
	}
	if o.DefaultReturnValue == "" {
		o.DefaultReturnValue = "ok"
	}
	return o
}

// Lower compiles a validated document into IR. The returned diagnostics are
// non-empty exactly when the IR is nil.
func Lower(doc *graph.Document, g *graph.Graph, opts Options) (*ir.WorkflowIR, types.Diagnostics) {
	opts = opts.withDefaults()

	order, err := graph.TopoSort(g)
	if err != nil {
		var cycleErr *graph.CycleError
		if errors.As(err, &cycleErr) {
			return nil, types.Diagnostics{types.Lower("L001",
				"workflow graph contains a cycle", cycleErr.NodeID)}
		}
		return nil, types.Diagnostics{types.Lower("L001", err.Error(), "")}
	}

	trigger, ok := doc.Trigger()
	if !ok {
		return nil, types.Diagnostics{types.Lower("L002",
			"workflow has no trigger node", "")}
	}

	idMap := buildIDMap(doc, trigger.ID, opts.Expander)

	var configFields []ir.ConfigField
	triggerRes, diags := lowerTrigger(trigger, &configFields)
	if diags.HasErrors() {
		return nil, diags
	}

	b := newBuilder(g, idMap, opts.Expander, opts.DefaultReturnValue)
	body := b.buildBody(order)
	if b.diags.HasErrors() {
		return nil, b.diags
	}

	result := &ir.WorkflowIR{
		Metadata: ir.Metadata{
			ID:                   doc.ID,
			Name:                 doc.Name,
			Description:          doc.Description,
			Version:              doc.Version,
			IsTestnet:            doc.GlobalConfig.IsTestnet,
			DefaultChainSelector: doc.GlobalConfig.DefaultChainSelector,
		},
		Trigger:         triggerRes.trigger,
		TriggerParam:    triggerRes.param,
		ConfigSchema:    configFields,
		RequiredSecrets: extractSecrets(&doc.GlobalConfig),
		EvmChains:       extractEvmChains(doc, triggerRes),
		UserRPCs:        extractUserRPCs(&doc.GlobalConfig),
		Body:            body,
	}
	return result, nil
}

// buildIDMap maps node IDs to the step IDs whose output a template reference
// like {{node-1.field}} should resolve against. Convenience nodes report the
// step ID of their expansion's final step; the trigger maps to the "trigger"
// alias so references against it become trigger-data refs.
func buildIDMap(doc *graph.Document, triggerID string, expander Expander) map[string]string {
	idMap := make(map[string]string, len(doc.Nodes)+1)
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if stepID, ok := expander.OutputStepID(n); ok {
			idMap[n.ID] = stepID
		}
	}
	idMap[triggerID] = "trigger"
	return idMap
}
