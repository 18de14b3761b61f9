package lower

import (
	"fmt"
	"strings"

	"github.com/BaSui01/flowc/graph"
	"github.com/BaSui01/flowc/ir"
	"github.com/BaSui01/flowc/types"
)

// triggerResult is what trigger lowering contributes to the IR.
type triggerResult struct {
	trigger ir.Trigger
	param   ir.TriggerParam
	// chainSelector/chainBinding are set for log triggers; the chain gets
	// UsedForTrigger in the extracted chain list.
	chainSelector string
	chainBinding  string
}

// lowerTrigger maps a trigger node's config onto an IR trigger definition,
// appending any config schema fields it introduces.
func lowerTrigger(n *graph.Node, configFields *[]ir.ConfigField) (*triggerResult, types.Diagnostics) {
	switch n.Kind {
	case graph.KindCronTrigger:
		return lowerCronTrigger(n, configFields), nil
	case graph.KindHTTPTrigger:
		return lowerHTTPTrigger(n), nil
	case graph.KindEvmLogTrigger:
		return lowerEvmLogTrigger(n), nil
	}
	return nil, types.Diagnostics{types.Lower("L002",
		fmt.Sprintf("node '%s' is not a trigger", n.ID), n.ID)}
}

func lowerCronTrigger(n *graph.Node, configFields *[]ir.ConfigField) *triggerResult {
	cfg := &n.Data.Config

	// The schedule is user-tunable, so it lives in the config schema with
	// the document value as default.
	*configFields = append(*configFields, ir.ConfigField{
		Name:         "schedule",
		Type:         ir.FieldString,
		DefaultValue: cfg.Schedule,
		Description:  "Cron schedule (min 30s interval)",
	})

	return &triggerResult{
		trigger: &ir.CronTrigger{
			Schedule: ir.Config("schedule"),
			Timezone: cfg.Timezone,
		},
		param: ir.ParamCron,
	}
}

func lowerHTTPTrigger(n *graph.Node) *triggerResult {
	cfg := &n.Data.Config

	path := "/"
	if cfg.Path != "" {
		path = cfg.Path
	}

	return &triggerResult{
		trigger: &ir.HTTPTrigger{
			Path:           ir.String(path),
			Methods:        []string{cfg.HTTPMethod},
			AuthorizedKeys: cfg.AuthorizedAddresses,
		},
		param: ir.ParamHTTP,
	}
}

func lowerEvmLogTrigger(n *graph.Node) *triggerResult {
	cfg := &n.Data.Config
	binding := MakeClientBindingName(cfg.ChainSelectorName)

	addresses := make([]ir.ValueExpr, 0, len(cfg.ContractAddresses))
	for _, a := range cfg.ContractAddresses {
		addresses = append(addresses, ResolveValueExpr(a, nil))
	}

	var filters []ir.TopicFilter
	if tf := cfg.TopicFilters; tf != nil {
		for i, values := range [][]string{tf.Topic1, tf.Topic2, tf.Topic3} {
			if len(values) > 0 {
				filters = append(filters, ir.TopicFilter{Index: uint8(i + 1), Values: values})
			}
		}
	}

	confidence := cfg.BlockConfirmation
	if confidence == "" {
		confidence = "finalized"
	}

	return &triggerResult{
		trigger: &ir.EvmLogTrigger{
			EvmClientBinding:  binding,
			ContractAddresses: addresses,
			EventSignature:    cfg.EventSignature,
			EventABIJSON:      string(cfg.EventABI),
			TopicFilters:      filters,
			Confidence:        confidence,
		},
		param:         ir.ParamEvmLog,
		chainSelector: cfg.ChainSelectorName,
		chainBinding:  binding,
	}
}

// MakeClientBindingName returns the chain client variable for a selector.
// Nodes on the same chain share one client.
func MakeClientBindingName(chainSelector string) string {
	return "evmClient_" + strings.ReplaceAll(chainSelector, "-", "_")
}
