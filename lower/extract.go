package lower

import (
	"github.com/BaSui01/flowc/graph"
	"github.com/BaSui01/flowc/ir"
)

// extractSecrets lifts the document's declared secrets into the IR.
func extractSecrets(global *graph.GlobalConfig) []ir.SecretDeclaration {
	secrets := make([]ir.SecretDeclaration, 0, len(global.Secrets))
	for _, s := range global.Secrets {
		secrets = append(secrets, ir.SecretDeclaration{
			Name:        s.Name,
			EnvVariable: s.EnvVariable,
		})
	}
	return secrets
}

// extractEvmChains collects the distinct chains used across all nodes, in
// document order. The trigger's chain, when present, comes first and is
// marked as such.
func extractEvmChains(doc *graph.Document, trigger *triggerResult) []ir.EvmChainUsage {
	seen := make(map[string]struct{})
	var chains []ir.EvmChainUsage

	if trigger.chainSelector != "" {
		seen[trigger.chainSelector] = struct{}{}
		chains = append(chains, ir.EvmChainUsage{
			ChainSelectorName: trigger.chainSelector,
			BindingName:       trigger.chainBinding,
			UsedForTrigger:    true,
		})
	}

	for i := range doc.Nodes {
		selector := nodeChainSelector(&doc.Nodes[i])
		if selector == "" {
			continue
		}
		if _, dup := seen[selector]; dup {
			continue
		}
		seen[selector] = struct{}{}
		chains = append(chains, ir.EvmChainUsage{
			ChainSelectorName: selector,
			BindingName:       MakeClientBindingName(selector),
		})
	}

	return chains
}

// nodeChainSelector returns the chain a node operates on, if any. The
// convenience kinds carry one too so their expansions share clients.
func nodeChainSelector(n *graph.Node) string {
	switch n.Kind {
	case graph.KindEvmRead, graph.KindEvmWrite,
		graph.KindMintToken, graph.KindBurnToken, graph.KindTransferToken,
		graph.KindCheckBalance:
		return n.Data.Config.ChainSelectorName
	}
	return ""
}

// extractUserRPCs lifts the document's RPC overrides into the IR.
func extractUserRPCs(global *graph.GlobalConfig) []ir.RPCEntry {
	rpcs := make([]ir.RPCEntry, 0, len(global.RPCs))
	for _, r := range global.RPCs {
		rpcs = append(rpcs, ir.RPCEntry{ChainName: r.ChainName, URL: r.URL})
	}
	return rpcs
}
