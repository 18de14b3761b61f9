package lower

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BaSui01/flowc/graph"
	"github.com/BaSui01/flowc/ir"
	"github.com/BaSui01/flowc/types"
)

// builder walks the topo-sorted graph and produces the IR execution plan.
// The consumed set tracks nodes already assigned to a block so a node ends
// up in exactly one place even though branch arms re-scan the topo order.
type builder struct {
	g             *graph.Graph
	idMap         map[string]string
	expander      Expander
	defaultReturn string
	diags         types.Diagnostics
	consumed      map[string]struct{}
}

func newBuilder(g *graph.Graph, idMap map[string]string, expander Expander, defaultReturn string) *builder {
	return &builder{
		g:             g,
		idMap:         idMap,
		expander:      expander,
		defaultReturn: defaultReturn,
		consumed:      make(map[string]struct{}),
	}
}

// buildBody lowers every non-trigger node into the top-level block.
func (b *builder) buildBody(topoOrder []string) ir.Block {
	nonTrigger := make([]string, 0, len(topoOrder))
	for _, id := range topoOrder {
		if n, ok := b.g.Node(id); ok && !n.IsTrigger() {
			nonTrigger = append(nonTrigger, id)
		}
	}
	return ir.Block{Steps: b.buildSteps(nonTrigger)}
}

func (b *builder) buildSteps(nodeIDs []string) []ir.Step {
	var steps []ir.Step

	for _, nodeID := range nodeIDs {
		if _, done := b.consumed[nodeID]; done {
			continue
		}
		n, ok := b.g.Node(nodeID)
		if !ok {
			continue
		}
		b.consumed[nodeID] = struct{}{}

		if n.Kind == graph.KindIf {
			steps = append(steps, b.buildBranch(n, nodeIDs)...)
			continue
		}

		if expanded, ok := b.expander.Expand(n, b.idMap); ok {
			for _, es := range expanded {
				steps = append(steps, ir.Step{
					ID:            es.ID,
					SourceNodeIDs: []string{es.SourceNodeID},
					Label:         es.Label,
					Op:            es.Op,
					Output:        es.Output,
				})
			}
		} else if step, diags := b.lowerNode(n); diags.HasErrors() {
			b.diags = append(b.diags, diags...)
		} else {
			steps = append(steps, step)
		}

		// A node-level log setting appends a trailing log step.
		if settings := n.Data.Settings; settings != nil && settings.Log != nil {
			steps = append(steps, ir.Step{
				ID:            nodeID + "___log",
				SourceNodeIDs: []string{nodeID},
				Label:         fmt.Sprintf("Log (%s)", n.Data.Label),
				Op: &ir.LogOp{
					Level:   parseLogLevel(settings.Log.Level),
					Message: ResolveValueExpr(settings.Log.MessageTemplate, b.idMap),
				},
			})
		}

		// A leaf that does not terminate explicitly gets a synthesized
		// return so every path still produces a result.
		if b.g.OutgoingCount(nodeID) == 0 && !n.IsExplicitTerminal() {
			expr := ir.String(b.defaultReturn)
			if settings := n.Data.Settings; settings != nil && settings.ReturnExpression != "" {
				expr = ResolveValueExpr(settings.ReturnExpression, b.idMap)
			}
			steps = append(steps, ir.Step{
				ID:            nodeID + "___auto_return",
				SourceNodeIDs: []string{nodeID},
				Label:         "Auto return",
				Op:            &ir.ReturnOp{Expression: expr},
			})
		}
	}

	return steps
}

// buildBranch lowers an if node into a Branch step, recursively lowering
// the two arms, plus the adjacent Merge step when the arms reconverge.
func (b *builder) buildBranch(ifNode *graph.Node, allIDs []string) []ir.Step {
	ifID := ifNode.ID

	var trueTarget, falseTarget string
	for _, succ := range b.g.Successors(ifID) {
		switch succ.Label.SourceHandle {
		case "true":
			trueTarget = succ.ID
		case "false":
			falseTarget = succ.ID
		}
	}

	mergeID := b.findReconvergence(trueTarget, falseTarget, allIDs)

	trueNodes := b.collectBranchNodes(trueTarget, mergeID, allIDs)
	falseNodes := b.collectBranchNodes(falseTarget, mergeID, allIDs)

	trueBlock := ir.Block{Steps: b.buildSteps(trueNodes)}
	falseBlock := ir.Block{Steps: b.buildSteps(falseNodes)}

	cfg := &ifNode.Data.Config
	branchStep := ir.Step{
		ID:            ifID,
		SourceNodeIDs: []string{ifID},
		Label:         ifNode.Data.Label,
		Op: &ir.BranchOp{
			Conditions:   b.lowerConditions(cfg.Conditions),
			CombineWith:  parseCombinator(cfg.CombineWith),
			TrueBranch:   trueBlock,
			FalseBranch:  falseBlock,
			ReconvergeAt: mergeID,
		},
	}

	steps := []ir.Step{branchStep}

	if mergeID != "" {
		b.consumed[mergeID] = struct{}{}

		label := mergeID
		if mergeNode, ok := b.g.Node(mergeID); ok {
			label = mergeNode.Data.Label
		}
		steps = append(steps, ir.Step{
			ID:            mergeID,
			SourceNodeIDs: []string{mergeID},
			Label:         label,
			Op: &ir.MergeOp{
				BranchStepID: ifID,
				Strategy:     ir.MergeStrategy{Kind: ir.MergePassThrough},
				Inputs: []ir.MergeInput{
					{HandleName: "true", Value: ir.Raw("/* true branch result */")},
					{HandleName: "false", Value: ir.Raw("/* false branch result */")},
				},
			},
			Output: stepOutput(mergeID, "any"),
		})
	}

	return steps
}

// findReconvergence returns the first node in topo order reachable from
// both arm entry points, or "" when the arms never meet again.
func (b *builder) findReconvergence(trueTarget, falseTarget string, allIDs []string) string {
	if trueTarget == "" || falseTarget == "" {
		return ""
	}
	trueReachable := b.g.ReachableFrom(trueTarget)
	falseReachable := b.g.ReachableFrom(falseTarget)

	for _, id := range allIDs {
		_, inTrue := trueReachable[id]
		_, inFalse := falseReachable[id]
		if inTrue && inFalse {
			return id
		}
	}
	return ""
}

// collectBranchNodes returns the arm's nodes in topo order: everything
// reachable from the arm entry that is not yet consumed and not the merge
// point itself.
func (b *builder) collectBranchNodes(start, mergeID string, allIDs []string) []string {
	if start == "" {
		return nil
	}
	reachable := b.g.ReachableFrom(start)

	var armNodes []string
	for _, id := range allIDs {
		if _, done := b.consumed[id]; done {
			continue
		}
		if id == mergeID {
			continue
		}
		if _, ok := reachable[id]; ok {
			armNodes = append(armNodes, id)
		}
	}
	return armNodes
}

// lowerNode lowers a primitive non-trigger, non-if node to one step.
func (b *builder) lowerNode(n *graph.Node) (ir.Step, types.Diagnostics) {
	var (
		op     ir.Operation
		output *ir.OutputBinding
	)

	switch n.Kind {
	case graph.KindHTTPRequest:
		op, output = b.lowerHTTPRequest(n)
	case graph.KindEvmRead:
		op, output = b.lowerEvmRead(n)
	case graph.KindEvmWrite:
		op, output = b.lowerEvmWrite(n)
	case graph.KindGetSecret:
		op = &ir.GetSecretOp{SecretName: n.Data.Config.SecretName}
		output = stepOutput(n.ID, "secret")
	case graph.KindCode:
		op, output = b.lowerCode(n)
	case graph.KindJSONParse:
		op, output = b.lowerJSONParse(n)
	case graph.KindABIEncode:
		op, output = b.lowerABIEncode(n)
	case graph.KindABIDecode:
		op, output = b.lowerABIDecode(n)
	case graph.KindFilter:
		op = &ir.FilterOp{
			Conditions:  b.lowerConditions(n.Data.Config.Conditions),
			CombineWith: parseCombinator(n.Data.Config.CombineWith),
			NonMatch: ir.FilterNonMatch{
				Kind:    ir.NonMatchEarlyReturn,
				Message: "Filter condition not met",
			},
		}
	case graph.KindAI:
		op, output = b.lowerAICall(n)
	case graph.KindLog:
		op = &ir.LogOp{
			Level:   parseLogLevel(n.Data.Config.Level),
			Message: ResolveValueExpr(n.Data.Config.MessageTemplate, b.idMap),
		}
	case graph.KindError, graph.KindStopAndError:
		op = &ir.ErrorThrowOp{
			Message: ResolveValueExpr(n.Data.Config.ErrorMessage, b.idMap),
		}
	case graph.KindReturn:
		op = &ir.ReturnOp{
			Expression: ResolveValueExpr(n.Data.Config.ReturnExpression, b.idMap),
		}
	case graph.KindMerge:
		// A merge not claimed by a branch is a plain pass-through.
		op = &ir.MergeOp{
			BranchStepID: "unknown",
			Strategy:     ir.MergeStrategy{Kind: ir.MergePassThrough},
		}
		output = stepOutput(n.ID, "any")
	default:
		return ir.Step{}, types.Diagnostics{types.Lower("L003",
			fmt.Sprintf("unsupported node kind '%s' for direct lowering", n.Kind), n.ID)}
	}

	return ir.Step{
		ID:            n.ID,
		SourceNodeIDs: []string{n.ID},
		Label:         n.Data.Label,
		Op:            op,
		Output:        output,
	}, nil
}

func (b *builder) lowerHTTPRequest(n *graph.Node) (ir.Operation, *ir.OutputBinding) {
	cfg := &n.Data.Config

	var body *ir.HTTPBody
	if cfg.Body != nil {
		body = &ir.HTTPBody{
			ContentType: parseContentType(cfg.Body.ContentType),
			Data:        ResolveValueExpr(cfg.Body.Data, b.idMap),
		}
	}

	var auth *ir.HTTPAuth
	if cfg.Authentication != nil && cfg.Authentication.Type == "bearerToken" {
		auth = &ir.HTTPAuth{
			Kind:        ir.AuthBearerToken,
			TokenSecret: cfg.Authentication.TokenSecret,
		}
	}

	statusCodes := make([]uint16, 0, len(cfg.ExpectedStatusCodes))
	for _, code := range cfg.ExpectedStatusCodes {
		statusCodes = append(statusCodes, uint16(code))
	}
	if len(statusCodes) == 0 {
		statusCodes = []uint16{200}
	}

	op := &ir.HTTPRequestOp{
		Method:              parseHTTPMethod(cfg.Method),
		URL:                 ResolveValueExpr(cfg.URL, b.idMap),
		Headers:             b.lowerKeyValues(cfg.Headers),
		QueryParams:         b.lowerKeyValues(cfg.QueryParameters),
		Body:                body,
		Authentication:      auth,
		CacheMaxAgeSeconds:  uint32(cfg.CacheMaxAge),
		TimeoutMs:           uint32(cfg.Timeout),
		ExpectedStatusCodes: statusCodes,
		ResponseFormat:      parseResponseFormat(cfg.ResponseFormat),
		Consensus:           ir.Consensus{Kind: ir.ConsensusIdentical},
	}
	return op, stepOutput(n.ID, "httpResponse")
}

// lowerKeyValues turns a header/query map into ordered pairs. Sorted by key
// so lowering the same document always yields the same IR.
func (b *builder) lowerKeyValues(m map[string]string) []ir.KeyValue {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]ir.KeyValue, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, ir.KeyValue{Key: k, Value: ResolveValueExpr(m[k], b.idMap)})
	}
	return pairs
}

func (b *builder) lowerEvmRead(n *graph.Node) (ir.Operation, *ir.OutputBinding) {
	cfg := &n.Data.Config

	args := make([]ir.EvmArg, 0, len(cfg.Args))
	for _, a := range cfg.Args {
		args = append(args, ir.EvmArg{
			ABIType: a.ABIType,
			Value:   ResolveValueExpr(a.Value, b.idMap),
		})
	}

	op := &ir.EvmReadOp{
		EvmClientBinding: MakeClientBindingName(cfg.ChainSelectorName),
		ContractAddress:  ResolveValueExpr(cfg.ContractAddress, b.idMap),
		FunctionName:     cfg.FunctionName,
		ABIJSON:          string(cfg.ABI),
		Args:             args,
	}
	if cfg.FromAddress != "" {
		from := ResolveValueExpr(cfg.FromAddress, b.idMap)
		op.FromAddress = &from
	}
	if cfg.BlockNumber != "" {
		block := ResolveValueExpr(cfg.BlockNumber, b.idMap)
		op.BlockNumber = &block
	}
	return op, stepOutput(n.ID, "any")
}

func (b *builder) lowerEvmWrite(n *graph.Node) (ir.Operation, *ir.OutputBinding) {
	cfg := &n.Data.Config

	// Calldata must be pre-encoded upstream; the first data mapping names
	// its source.
	encoded := ir.Raw("/* no data mapping */")
	if len(cfg.DataMapping) > 0 {
		encoded = ResolveValueExpr(cfg.DataMapping[0].Value, b.idMap)
	}

	op := &ir.EvmWriteOp{
		EvmClientBinding: MakeClientBindingName(cfg.ChainSelectorName),
		ReceiverAddress:  ResolveValueExpr(cfg.ReceiverAddress, b.idMap),
		GasLimit:         ir.Integer(parseGasLimit(cfg.GasLimit)),
		EncodedData:      encoded,
	}
	if cfg.Value != "" {
		wei := ResolveValueExpr(cfg.Value, b.idMap)
		op.ValueWei = &wei
	}
	return op, stepOutput(n.ID, "txReceipt")
}

func (b *builder) lowerCode(n *graph.Node) (ir.Operation, *ir.OutputBinding) {
	cfg := &n.Data.Config

	bindings := make([]ir.CodeInputBinding, 0, len(cfg.InputVariables))
	for _, ref := range cfg.InputVariables {
		name := strings.NewReplacer("{{", "", "}}", "", ".", "_").Replace(ref)
		bindings = append(bindings, ir.CodeInputBinding{
			VariableName: name,
			Value:        ResolveValueExpr(ref, b.idMap),
		})
	}

	mode := ir.RunOnceForAll
	if cfg.ExecutionMode == "runOnceForEach" {
		mode = ir.RunOnceForEach
	}

	op := &ir.CodeOp{
		Code:          cfg.Code,
		InputBindings: bindings,
		ExecutionMode: mode,
		TimeoutMs:     uint32(cfg.Timeout),
	}
	return op, stepOutput(n.ID, "any")
}

func (b *builder) lowerJSONParse(n *graph.Node) (ir.Operation, *ir.OutputBinding) {
	cfg := &n.Data.Config

	strict := true
	if cfg.Strict != nil {
		strict = *cfg.Strict
	}

	op := &ir.JSONParseOp{
		Input:      b.resolvePredecessorInput(n.ID, "body", ""),
		SourcePath: cfg.SourcePath,
		Strict:     strict,
	}
	return op, stepOutput(n.ID, "any")
}

func (b *builder) lowerABIEncode(n *graph.Node) (ir.Operation, *ir.OutputBinding) {
	cfg := &n.Data.Config

	mappings := make([]ir.ABIDataMapping, 0, len(cfg.ParamMappings))
	for _, m := range cfg.ParamMappings {
		mappings = append(mappings, ir.ABIDataMapping{
			ParamName: m.ParamName,
			Value:     ResolveValueExpr(m.Source, b.idMap),
		})
	}

	op := &ir.ABIEncodeOp{
		ABIJSON:      string(cfg.ABIParams),
		DataMappings: mappings,
	}
	return op, stepOutput(n.ID, "encodedData")
}

func (b *builder) lowerABIDecode(n *graph.Node) (ir.Operation, *ir.OutputBinding) {
	cfg := &n.Data.Config

	op := &ir.ABIDecodeOp{
		Input:       b.resolvePredecessorInput(n.ID, "", ""),
		ABIJSON:     string(cfg.ABIParams),
		OutputNames: cfg.OutputNames,
	}
	return op, stepOutput(n.ID, "any")
}

func (b *builder) lowerAICall(n *graph.Node) (ir.Operation, *ir.OutputBinding) {
	cfg := &n.Data.Config

	format := ir.AIResponseText
	if cfg.ResponseFormat == "json" {
		format = ir.AIResponseJSON
	}

	op := &ir.AICallOp{
		Provider:       cfg.Provider,
		BaseURL:        ResolveValueExpr(cfg.BaseURL, b.idMap),
		Model:          ResolveValueExpr(cfg.Model, b.idMap),
		APIKeySecret:   cfg.APIKeySecret,
		SystemPrompt:   ResolveValueExpr(cfg.SystemPrompt, b.idMap),
		UserPrompt:     ResolveValueExpr(cfg.UserPrompt, b.idMap),
		Temperature:    cfg.Temperature,
		MaxTokens:      uint32(cfg.MaxTokens),
		ResponseFormat: format,
		Consensus:      ir.Consensus{Kind: ir.ConsensusIdentical},
	}
	return op, stepOutput(n.ID, "any")
}

// resolvePredecessorInput builds the implicit input of nodes that consume
// their graph predecessor's output. httpField is used when the predecessor
// is an HTTP-shaped node, defaultField otherwise.
func (b *builder) resolvePredecessorInput(nodeID, httpField, defaultField string) ir.ValueExpr {
	preds := b.g.Predecessors(nodeID)
	if len(preds) == 0 {
		return ir.Raw("/* no predecessor */")
	}
	predID := preds[0]

	pred, ok := b.g.Node(predID)
	if ok && pred.IsTrigger() {
		field := defaultField
		if pred.Kind == graph.KindHTTPTrigger || field == "" {
			field = "input"
		}
		return ir.TriggerData(field)
	}

	stepID := predID
	if mapped, found := b.idMap[predID]; found {
		stepID = mapped
	}

	field := defaultField
	if ok && (pred.Kind == graph.KindHTTPRequest || pred.Kind == graph.KindAI) {
		field = httpField
	}
	return ir.Binding(stepID, field)
}

func (b *builder) lowerConditions(defs []graph.ConditionDef) []ir.Condition {
	conditions := make([]ir.Condition, 0, len(defs))
	for _, def := range defs {
		cond := ir.Condition{
			Field:    ResolveValueExpr(def.Field, b.idMap),
			Operator: parseCompareOp(def.Operator),
		}
		if def.Value != "" {
			value := ResolveValueExpr(def.Value, b.idMap)
			cond.Value = &value
		}
		conditions = append(conditions, cond)
	}
	return conditions
}

func stepOutput(nodeID, typeHint string) *ir.OutputBinding {
	return &ir.OutputBinding{
		VariableName: "step_" + strings.ReplaceAll(nodeID, "-", "_"),
		TypeHint:     typeHint,
	}
}

func parseHTTPMethod(s string) ir.HTTPMethod {
	switch strings.ToUpper(s) {
	case "POST":
		return ir.MethodPost
	case "PUT":
		return ir.MethodPut
	case "DELETE":
		return ir.MethodDelete
	case "PATCH":
		return ir.MethodPatch
	case "HEAD":
		return ir.MethodHead
	}
	return ir.MethodGet
}

func parseContentType(s string) ir.HTTPContentType {
	switch s {
	case "json":
		return ir.ContentJSON
	case "formUrlEncoded":
		return ir.ContentFormURLEncoded
	}
	return ir.ContentRaw
}

func parseResponseFormat(s string) ir.HTTPResponseFormat {
	switch s {
	case "text":
		return ir.ResponseText
	case "binary":
		return ir.ResponseBinary
	}
	return ir.ResponseJSON
}

func parseLogLevel(s string) ir.LogLevel {
	switch s {
	case "debug":
		return ir.LevelDebug
	case "warn":
		return ir.LevelWarn
	case "error":
		return ir.LevelError
	}
	return ir.LevelInfo
}

func parseCombinator(s string) ir.Combinator {
	if s == "or" {
		return ir.CombineOr
	}
	return ir.CombineAnd
}

func parseCompareOp(s string) ir.CompareOp {
	switch ir.CompareOp(s) {
	case ir.OpNotEquals, ir.OpGt, ir.OpGte, ir.OpLt, ir.OpLte,
		ir.OpContains, ir.OpNotContains, ir.OpStartsWith, ir.OpEndsWith,
		ir.OpRegex, ir.OpNotRegex, ir.OpExists, ir.OpNotExists,
		ir.OpIsEmpty, ir.OpIsNotEmpty:
		return ir.CompareOp(s)
	}
	return ir.OpEquals
}

func parseGasLimit(s string) int64 {
	gas, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return 500_000
	}
	return int64(gas)
}
