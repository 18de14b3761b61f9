package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BaSui01/flowc/types"
)

// maxWriteGasLimit is the largest gas limit the target runtime accepts for a
// single contract write.
const maxWriteGasLimit = 5_000_000

var validHTTPMethods = map[string]struct{}{
	"GET": {}, "POST": {}, "PUT": {}, "DELETE": {}, "PATCH": {}, "HEAD": {},
}

// ValidateNodeConfigs checks each node's kind-specific configuration.
// Secret references are checked against the document's declared secrets.
func ValidateNodeConfigs(doc *Document) types.Diagnostics {
	declared := make(map[string]struct{}, len(doc.GlobalConfig.Secrets))
	for _, s := range doc.GlobalConfig.Secrets {
		declared[s.Name] = struct{}{}
	}

	var diags types.Diagnostics
	for i := range doc.Nodes {
		diags = append(diags, validateNodeConfig(&doc.Nodes[i], declared)...)
	}
	return diags
}

func validateNodeConfig(n *Node, declaredSecrets map[string]struct{}) types.Diagnostics {
	var diags types.Diagnostics
	cfg := &n.Data.Config

	switch n.Kind {
	case KindCronTrigger:
		if strings.TrimSpace(cfg.Schedule) == "" {
			diags = append(diags, types.Validate("N001",
				"cron trigger schedule must not be empty", n.ID))
		}

	case KindHTTPTrigger:
		if _, ok := validHTTPMethods[cfg.HTTPMethod]; !ok {
			diags = append(diags, types.Validate("N002",
				fmt.Sprintf("invalid HTTP method '%s'", cfg.HTTPMethod), n.ID))
		}

	case KindEvmLogTrigger:
		if len(cfg.ContractAddresses) == 0 {
			diags = append(diags, types.Validate("N003",
				"log trigger must have at least one contract address", n.ID))
		}
		if len(cfg.ContractAddresses) > 5 {
			diags = append(diags, types.Validate("N003",
				"log trigger cannot have more than 5 contract addresses", n.ID))
		}
		if strings.TrimSpace(cfg.EventSignature) == "" {
			diags = append(diags, types.Validate("N003",
				"log trigger event signature must not be empty", n.ID))
		}

	case KindHTTPRequest:
		if strings.TrimSpace(cfg.URL) == "" {
			diags = append(diags, types.Validate("N004",
				"HTTP request URL must not be empty", n.ID))
		}
		if _, ok := validHTTPMethods[cfg.Method]; !ok {
			diags = append(diags, types.Validate("N004",
				fmt.Sprintf("invalid HTTP method '%s'", cfg.Method), n.ID))
		}
		if auth := cfg.Authentication; auth != nil && auth.Type == "bearerToken" {
			if _, ok := declaredSecrets[auth.TokenSecret]; !ok {
				diags = append(diags, types.Validate("N004",
					fmt.Sprintf("authentication secret '%s' is not declared in globalConfig", auth.TokenSecret),
					n.ID))
			}
		}

	case KindEvmRead:
		if strings.TrimSpace(cfg.ContractAddress) == "" {
			diags = append(diags, types.Validate("N005",
				"contract read address must not be empty", n.ID))
		}
		if strings.TrimSpace(cfg.FunctionName) == "" {
			diags = append(diags, types.Validate("N005",
				"contract read function name must not be empty", n.ID))
		}

	case KindEvmWrite:
		if strings.TrimSpace(cfg.ReceiverAddress) == "" {
			diags = append(diags, types.Validate("N006",
				"contract write receiver address must not be empty", n.ID))
		}
		if gas, err := strconv.ParseUint(cfg.GasLimit, 10, 64); err == nil && gas > maxWriteGasLimit {
			diags = append(diags, types.Validate("N006",
				fmt.Sprintf("contract write gas limit exceeds maximum (%d)", maxWriteGasLimit), n.ID))
		}

	case KindGetSecret:
		if strings.TrimSpace(cfg.SecretName) == "" {
			diags = append(diags, types.Validate("N007",
				"secret name must not be empty", n.ID))
		} else if _, ok := declaredSecrets[cfg.SecretName]; !ok {
			diags = append(diags, types.Validate("N007",
				fmt.Sprintf("secret '%s' is not declared in globalConfig", cfg.SecretName), n.ID))
		}

	case KindIf, KindFilter:
		if len(cfg.Conditions) == 0 {
			diags = append(diags, types.Validate("N008",
				fmt.Sprintf("%s node must have at least one condition", n.Kind), n.ID))
		}
		if cfg.CombineWith != "" && cfg.CombineWith != "and" && cfg.CombineWith != "or" {
			diags = append(diags, types.Validate("N008",
				fmt.Sprintf("invalid condition combinator '%s'", cfg.CombineWith), n.ID))
		}

	case KindAI:
		if strings.TrimSpace(cfg.UserPrompt) == "" {
			diags = append(diags, types.Validate("N009",
				"AI node user prompt must not be empty", n.ID))
		}
		if cfg.APIKeySecret != "" {
			if _, ok := declaredSecrets[cfg.APIKeySecret]; !ok {
				diags = append(diags, types.Validate("N009",
					fmt.Sprintf("API key secret '%s' is not declared in globalConfig", cfg.APIKeySecret), n.ID))
			}
		}
	}

	return diags
}
