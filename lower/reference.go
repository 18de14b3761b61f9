package lower

import (
	"strings"

	"github.com/BaSui01/flowc/ir"
)

// ResolveValueExpr parses a string that may contain `{{nodeId.field}}`
// references into an IR value expression.
//
// A string that is exactly one reference resolves to a binding, config, or
// trigger-data reference. A string mixing literals and references becomes a
// template. Anything else is a string literal. idMap redirects original
// node IDs to expanded step IDs and aliases the trigger node to "trigger".
func ResolveValueExpr(input string, idMap map[string]string) ir.ValueExpr {
	trimmed := strings.TrimSpace(input)

	// Pure reference: the entire string is one {{...}}.
	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") &&
		strings.Count(trimmed, "{{") == 1 {
		return resolveSingleRef(trimmed[2:len(trimmed)-2], idMap)
	}

	if !strings.Contains(trimmed, "{{") {
		return ir.String(trimmed)
	}

	parts := parseTemplateParts(trimmed, idMap)
	if len(parts) == 1 && parts[0].Kind == ir.PartLit {
		return ir.String(parts[0].Lit)
	}
	return ir.Template(parts...)
}

func resolveSingleRef(inner string, idMap map[string]string) ir.ValueExpr {
	nodeID, fieldPath := splitRef(strings.TrimSpace(inner))

	if nodeID == "config" {
		return ir.Config(fieldPath)
	}
	if nodeID == "trigger" {
		return ir.TriggerData(fieldPath)
	}

	stepID := nodeID
	if mapped, ok := idMap[nodeID]; ok {
		stepID = mapped
	}
	// The trigger node's own ID aliases to "trigger" through the id map.
	if stepID == "trigger" {
		return ir.TriggerData(fieldPath)
	}

	return ir.Binding(stepID, fieldPath)
}

func splitRef(s string) (nodeID, fieldPath string) {
	if pos := strings.IndexByte(s, '.'); pos >= 0 {
		return s[:pos], s[pos+1:]
	}
	return s, ""
}

func parseTemplateParts(input string, idMap map[string]string) []ir.TemplatePart {
	var parts []ir.TemplatePart
	remaining := input

	for {
		start := strings.Index(remaining, "{{")
		if start < 0 {
			break
		}
		if start > 0 {
			parts = append(parts, ir.LitPart(remaining[:start]))
		}

		afterOpen := remaining[start+2:]
		end := strings.Index(afterOpen, "}}")
		if end < 0 {
			// Malformed reference, keep the rest as a literal.
			parts = append(parts, ir.LitPart(remaining[start:]))
			return parts
		}
		parts = append(parts, ir.ExprPart(resolveSingleRef(afterOpen[:end], idMap)))
		remaining = afterOpen[end+2:]
	}

	if remaining != "" {
		parts = append(parts, ir.LitPart(remaining))
	}
	return parts
}
