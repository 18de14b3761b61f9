package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/flowc/graph"
	"github.com/BaSui01/flowc/ir"
)

func TestLowerLinearWorkflow(t *testing.T) {
	d := doc(
		[]graph.Node{cronNode("trigger-1"), httpNode("fetch-1"), returnNode("ret-1", "{{fetch-1.body}}")},
		[]graph.Edge{edge("trigger-1", "fetch-1"), edge("fetch-1", "ret-1")},
	)
	result := lowerDoc(t, d)

	require.Equal(t, []string{"fetch-1", "ret-1"}, stepIDs(result.Body))

	fetch := result.Body.Steps[0]
	httpOp, ok := fetch.Op.(*ir.HTTPRequestOp)
	require.True(t, ok)
	assert.Equal(t, ir.MethodGet, httpOp.Method)
	assert.Equal(t, ir.String("https://api.example.com/price"), httpOp.URL)
	assert.Equal(t, []uint16{200}, httpOp.ExpectedStatusCodes)
	assert.Equal(t, ir.ResponseJSON, httpOp.ResponseFormat)
	assert.Equal(t, ir.ConsensusIdentical, httpOp.Consensus.Kind)
	require.NotNil(t, fetch.Output)
	assert.Equal(t, "step_fetch_1", fetch.Output.VariableName)

	ret := result.Body.Steps[1]
	retOp, ok := ret.Op.(*ir.ReturnOp)
	require.True(t, ok)
	assert.Equal(t, ir.Binding("fetch-1", "body"), retOp.Expression)
	assert.Nil(t, ret.Output)
}

func TestLowerSynthesizesReturnForLeaf(t *testing.T) {
	d := doc(
		[]graph.Node{cronNode("trigger-1"), httpNode("fetch-1")},
		[]graph.Edge{edge("trigger-1", "fetch-1")},
	)
	result := lowerDoc(t, d)

	require.Equal(t, []string{"fetch-1", "fetch-1___auto_return"}, stepIDs(result.Body))

	auto := result.Body.Steps[1]
	assert.Equal(t, []string{"fetch-1"}, auto.SourceNodeIDs)
	assert.Equal(t, "Auto return", auto.Label)
	retOp, ok := auto.Op.(*ir.ReturnOp)
	require.True(t, ok)
	assert.Equal(t, ir.String("ok"), retOp.Expression)
}

func TestLowerSynthesizedReturnUsesNodeSetting(t *testing.T) {
	fetch := httpNode("fetch-1")
	fetch.Data.Settings = &graph.NodeSettings{ReturnExpression: "{{fetch-1.body}}"}
	d := doc(
		[]graph.Node{cronNode("trigger-1"), fetch},
		[]graph.Edge{edge("trigger-1", "fetch-1")},
	)
	result := lowerDoc(t, d)

	auto := findStep(t, result.Body, "fetch-1___auto_return")
	assert.Equal(t, ir.Binding("fetch-1", "body"), auto.Op.(*ir.ReturnOp).Expression)
}

func TestLowerNodeLogSetting(t *testing.T) {
	fetch := httpNode("fetch-1")
	fetch.Data.Label = "Fetch price"
	fetch.Data.Settings = &graph.NodeSettings{
		Log: &graph.LogSetting{Level: "warn", MessageTemplate: "status {{fetch-1.statusCode}}"},
	}
	d := doc(
		[]graph.Node{cronNode("trigger-1"), fetch, returnNode("ret-1", "done")},
		[]graph.Edge{edge("trigger-1", "fetch-1"), edge("fetch-1", "ret-1")},
	)
	result := lowerDoc(t, d)

	require.Equal(t, []string{"fetch-1", "fetch-1___log", "ret-1"}, stepIDs(result.Body))

	logStep := result.Body.Steps[1]
	assert.Equal(t, "Log (Fetch price)", logStep.Label)
	logOp, ok := logStep.Op.(*ir.LogOp)
	require.True(t, ok)
	assert.Equal(t, ir.LevelWarn, logOp.Level)
	require.Equal(t, ir.ExprTemplate, logOp.Message.Kind)
	assert.Nil(t, logStep.Output)
}

func TestLowerBranchBothArmsTerminate(t *testing.T) {
	d := doc(
		[]graph.Node{
			cronNode("trigger-1"), ifNode("if-1"),
			returnNode("ret-t", "high"), returnNode("ret-f", "low"),
		},
		[]graph.Edge{
			edge("trigger-1", "if-1"),
			branchEdge("if-1", "ret-t", "true"),
			branchEdge("if-1", "ret-f", "false"),
		},
	)
	result := lowerDoc(t, d)

	require.Equal(t, []string{"if-1"}, stepIDs(result.Body))

	branch, ok := result.Body.Steps[0].Op.(*ir.BranchOp)
	require.True(t, ok)
	assert.Empty(t, branch.ReconvergeAt)
	require.Len(t, branch.Conditions, 1)
	assert.Equal(t, ir.Config("threshold"), branch.Conditions[0].Field)
	assert.Equal(t, ir.OpGt, branch.Conditions[0].Operator)
	require.NotNil(t, branch.Conditions[0].Value)
	assert.Equal(t, ir.String("100"), *branch.Conditions[0].Value)
	assert.Equal(t, ir.CombineAnd, branch.CombineWith)

	assert.Equal(t, []string{"ret-t"}, stepIDs(branch.TrueBranch))
	assert.Equal(t, []string{"ret-f"}, stepIDs(branch.FalseBranch))
	assert.Nil(t, result.Body.Steps[0].Output)
}

func TestLowerBranchReconverges(t *testing.T) {
	a := node("code-a", graph.KindCode)
	a.Data.Config.Code = "return 1"
	b := node("code-b", graph.KindCode)
	b.Data.Config.Code = "return 2"
	merge := node("merge-1", graph.KindMerge)
	merge.Data.Label = "Join arms"

	d := doc(
		[]graph.Node{cronNode("trigger-1"), ifNode("if-1"), a, b, merge},
		[]graph.Edge{
			edge("trigger-1", "if-1"),
			branchEdge("if-1", "code-a", "true"),
			branchEdge("if-1", "code-b", "false"),
			edge("code-a", "merge-1"),
			edge("code-b", "merge-1"),
		},
	)
	result := lowerDoc(t, d)

	require.Equal(t, []string{"if-1", "merge-1"}, stepIDs(result.Body))

	branch := result.Body.Steps[0].Op.(*ir.BranchOp)
	assert.Equal(t, "merge-1", branch.ReconvergeAt)
	assert.Equal(t, []string{"code-a"}, stepIDs(branch.TrueBranch))
	assert.Equal(t, []string{"code-b"}, stepIDs(branch.FalseBranch))

	mergeStep := result.Body.Steps[1]
	assert.Equal(t, "Join arms", mergeStep.Label)
	mergeOp, ok := mergeStep.Op.(*ir.MergeOp)
	require.True(t, ok)
	assert.Equal(t, "if-1", mergeOp.BranchStepID)
	assert.Equal(t, ir.MergePassThrough, mergeOp.Strategy.Kind)
	require.Len(t, mergeOp.Inputs, 2)
	assert.Equal(t, "true", mergeOp.Inputs[0].HandleName)
	assert.Equal(t, "false", mergeOp.Inputs[1].HandleName)
	require.NotNil(t, mergeStep.Output)
	assert.Equal(t, "step_merge_1", mergeStep.Output.VariableName)
	assert.Equal(t, "any", mergeStep.Output.TypeHint)
}

// Arm partitioning collects every unconsumed node reachable from the arm
// entry, so a node downstream of the merge is claimed by whichever arm is
// partitioned first.
func TestLowerNodeAfterMergeClaimedByFirstArm(t *testing.T) {
	a := node("code-a", graph.KindCode)
	b := node("code-b", graph.KindCode)
	merge := node("merge-1", graph.KindMerge)

	d := doc(
		[]graph.Node{
			cronNode("trigger-1"), ifNode("if-1"), a, b, merge,
			returnNode("ret-1", "done"),
		},
		[]graph.Edge{
			edge("trigger-1", "if-1"),
			branchEdge("if-1", "code-a", "true"),
			branchEdge("if-1", "code-b", "false"),
			edge("code-a", "merge-1"),
			edge("code-b", "merge-1"),
			edge("merge-1", "ret-1"),
		},
	)
	result := lowerDoc(t, d)

	require.Equal(t, []string{"if-1", "merge-1"}, stepIDs(result.Body))
	branch := result.Body.Steps[0].Op.(*ir.BranchOp)
	assert.Equal(t, []string{"code-a", "ret-1"}, stepIDs(branch.TrueBranch))
	assert.Equal(t, []string{"code-b"}, stepIDs(branch.FalseBranch))
}

func TestLowerNestedBranch(t *testing.T) {
	d := doc(
		[]graph.Node{
			cronNode("trigger-1"), ifNode("if-outer"), ifNode("if-inner"),
			returnNode("ret-a", "a"), returnNode("ret-b", "b"), returnNode("ret-c", "c"),
		},
		[]graph.Edge{
			edge("trigger-1", "if-outer"),
			branchEdge("if-outer", "if-inner", "true"),
			branchEdge("if-outer", "ret-c", "false"),
			branchEdge("if-inner", "ret-a", "true"),
			branchEdge("if-inner", "ret-b", "false"),
		},
	)
	result := lowerDoc(t, d)

	require.Equal(t, []string{"if-outer"}, stepIDs(result.Body))
	outer := result.Body.Steps[0].Op.(*ir.BranchOp)
	require.Equal(t, []string{"if-inner"}, stepIDs(outer.TrueBranch))
	assert.Equal(t, []string{"ret-c"}, stepIDs(outer.FalseBranch))

	inner := outer.TrueBranch.Steps[0].Op.(*ir.BranchOp)
	assert.Equal(t, []string{"ret-a"}, stepIDs(inner.TrueBranch))
	assert.Equal(t, []string{"ret-b"}, stepIDs(inner.FalseBranch))
}

func TestLowerBranchMissingArm(t *testing.T) {
	d := doc(
		[]graph.Node{cronNode("trigger-1"), ifNode("if-1"), returnNode("ret-t", "one-sided")},
		[]graph.Edge{
			edge("trigger-1", "if-1"),
			branchEdge("if-1", "ret-t", "true"),
		},
	)
	result := lowerDoc(t, d)

	branch := result.Body.Steps[0].Op.(*ir.BranchOp)
	assert.Empty(t, branch.ReconvergeAt)
	assert.Equal(t, []string{"ret-t"}, stepIDs(branch.TrueBranch))
	assert.Empty(t, branch.FalseBranch.Steps)
}

func TestLowerHeadersAndQueryParamsSorted(t *testing.T) {
	fetch := httpNode("fetch-1")
	fetch.Data.Config.Headers = map[string]string{
		"X-Api-Key": "{{config.apiKey}}", "Accept": "application/json", "User-Agent": "flowc",
	}
	fetch.Data.Config.QueryParameters = map[string]string{"symbol": "ETH", "currency": "USD"}
	d := doc(
		[]graph.Node{cronNode("trigger-1"), fetch, returnNode("ret-1", "done")},
		[]graph.Edge{edge("trigger-1", "fetch-1"), edge("fetch-1", "ret-1")},
	)
	result := lowerDoc(t, d)

	httpOp := result.Body.Steps[0].Op.(*ir.HTTPRequestOp)
	require.Len(t, httpOp.Headers, 3)
	assert.Equal(t, "Accept", httpOp.Headers[0].Key)
	assert.Equal(t, "User-Agent", httpOp.Headers[1].Key)
	assert.Equal(t, "X-Api-Key", httpOp.Headers[2].Key)
	assert.Equal(t, ir.Config("apiKey"), httpOp.Headers[2].Value)
	require.Len(t, httpOp.QueryParams, 2)
	assert.Equal(t, "currency", httpOp.QueryParams[0].Key)
	assert.Equal(t, "symbol", httpOp.QueryParams[1].Key)
}

func TestLowerHTTPRequestBodyAndAuth(t *testing.T) {
	fetch := httpNode("fetch-1")
	fetch.Data.Config.Method = "post"
	fetch.Data.Config.Body = &graph.HTTPBodyConfig{ContentType: "json", Data: `{"q":"{{trigger.input}}"}`}
	fetch.Data.Config.Authentication = &graph.HTTPAuthConfig{Type: "bearerToken", TokenSecret: "apiToken"}
	fetch.Data.Config.ExpectedStatusCodes = []int{200, 201}
	d := doc(
		[]graph.Node{cronNode("trigger-1"), fetch, returnNode("ret-1", "done")},
		[]graph.Edge{edge("trigger-1", "fetch-1"), edge("fetch-1", "ret-1")},
	)
	result := lowerDoc(t, d)

	httpOp := result.Body.Steps[0].Op.(*ir.HTTPRequestOp)
	assert.Equal(t, ir.MethodPost, httpOp.Method)
	require.NotNil(t, httpOp.Body)
	assert.Equal(t, ir.ContentJSON, httpOp.Body.ContentType)
	require.NotNil(t, httpOp.Authentication)
	assert.Equal(t, ir.AuthBearerToken, httpOp.Authentication.Kind)
	assert.Equal(t, "apiToken", httpOp.Authentication.TokenSecret)
	assert.Equal(t, []uint16{200, 201}, httpOp.ExpectedStatusCodes)
}

func TestLowerEvmWriteDefaults(t *testing.T) {
	write := node("write-1", graph.KindEvmWrite)
	write.Data.Config.ChainSelectorName = "ethereum"
	write.Data.Config.ReceiverAddress = "0xdead"
	d := doc(
		[]graph.Node{cronNode("trigger-1"), write, returnNode("ret-1", "done")},
		[]graph.Edge{edge("trigger-1", "write-1"), edge("write-1", "ret-1")},
	)
	result := lowerDoc(t, d)

	writeOp := result.Body.Steps[0].Op.(*ir.EvmWriteOp)
	assert.Equal(t, "evmClient_ethereum", writeOp.EvmClientBinding)
	assert.Equal(t, ir.Integer(500_000), writeOp.GasLimit)
	assert.Equal(t, ir.Raw("/* no data mapping */"), writeOp.EncodedData)
	assert.Nil(t, writeOp.ValueWei)
}

func TestLowerEvmWriteExplicitConfig(t *testing.T) {
	write := node("write-1", graph.KindEvmWrite)
	write.Data.Config.ChainSelectorName = "ethereum"
	write.Data.Config.ReceiverAddress = "{{config.vault}}"
	write.Data.Config.GasLimit = "800000"
	write.Data.Config.Value = "1000000000000000000"
	write.Data.Config.DataMapping = []graph.EvmArgDef{{Value: "{{encode-1}}"}}
	d := doc(
		[]graph.Node{cronNode("trigger-1"), write, returnNode("ret-1", "done")},
		[]graph.Edge{edge("trigger-1", "write-1"), edge("write-1", "ret-1")},
	)
	result := lowerDoc(t, d)

	writeOp := result.Body.Steps[0].Op.(*ir.EvmWriteOp)
	assert.Equal(t, ir.Config("vault"), writeOp.ReceiverAddress)
	assert.Equal(t, ir.Integer(800_000), writeOp.GasLimit)
	assert.Equal(t, ir.Binding("encode-1", ""), writeOp.EncodedData)
	require.NotNil(t, writeOp.ValueWei)
	assert.Equal(t, ir.String("1000000000000000000"), *writeOp.ValueWei)
}

func TestLowerCodeNodeInputBindings(t *testing.T) {
	code := node("calc-1", graph.KindCode)
	code.Data.Config.Code = "return price * 2"
	code.Data.Config.InputVariables = []string{"{{fetch-1.body.price}}"}
	code.Data.Config.ExecutionMode = "runOnceForEach"
	d := doc(
		[]graph.Node{cronNode("trigger-1"), httpNode("fetch-1"), code, returnNode("ret-1", "done")},
		[]graph.Edge{
			edge("trigger-1", "fetch-1"), edge("fetch-1", "calc-1"), edge("calc-1", "ret-1"),
		},
	)
	result := lowerDoc(t, d)

	codeOp := findStep(t, result.Body, "calc-1").Op.(*ir.CodeOp)
	require.Len(t, codeOp.InputBindings, 1)
	assert.Equal(t, "fetch-1_body_price", codeOp.InputBindings[0].VariableName)
	assert.Equal(t, ir.Binding("fetch-1", "body.price"), codeOp.InputBindings[0].Value)
	assert.Equal(t, ir.RunOnceForEach, codeOp.ExecutionMode)
}

func TestLowerJSONParseUsesPredecessorBody(t *testing.T) {
	parse := node("parse-1", graph.KindJSONParse)
	parse.Data.Config.SourcePath = "data.price"
	d := doc(
		[]graph.Node{cronNode("trigger-1"), httpNode("fetch-1"), parse, returnNode("ret-1", "done")},
		[]graph.Edge{
			edge("trigger-1", "fetch-1"), edge("fetch-1", "parse-1"), edge("parse-1", "ret-1"),
		},
	)
	result := lowerDoc(t, d)

	parseOp := findStep(t, result.Body, "parse-1").Op.(*ir.JSONParseOp)
	assert.Equal(t, ir.Binding("fetch-1", "body"), parseOp.Input)
	assert.Equal(t, "data.price", parseOp.SourcePath)
	assert.True(t, parseOp.Strict)
}

func TestLowerJSONParseAfterTrigger(t *testing.T) {
	trigger := node("trigger-1", graph.KindHTTPTrigger)
	trigger.Data.Config.HTTPMethod = "POST"
	parse := node("parse-1", graph.KindJSONParse)
	d := doc(
		[]graph.Node{trigger, parse, returnNode("ret-1", "done")},
		[]graph.Edge{edge("trigger-1", "parse-1"), edge("parse-1", "ret-1")},
	)
	result := lowerDoc(t, d)

	parseOp := findStep(t, result.Body, "parse-1").Op.(*ir.JSONParseOp)
	assert.Equal(t, ir.TriggerData("input"), parseOp.Input)
}

func TestLowerFilterDefaults(t *testing.T) {
	filter := node("filter-1", graph.KindFilter)
	filter.Data.Config.Conditions = []graph.ConditionDef{
		{Field: "{{fetch-1.body.price}}", Operator: "isNotEmpty"},
	}
	d := doc(
		[]graph.Node{cronNode("trigger-1"), httpNode("fetch-1"), filter, returnNode("ret-1", "done")},
		[]graph.Edge{
			edge("trigger-1", "fetch-1"), edge("fetch-1", "filter-1"), edge("filter-1", "ret-1"),
		},
	)
	result := lowerDoc(t, d)

	filterOp := findStep(t, result.Body, "filter-1").Op.(*ir.FilterOp)
	assert.Equal(t, ir.NonMatchEarlyReturn, filterOp.NonMatch.Kind)
	assert.Equal(t, "Filter condition not met", filterOp.NonMatch.Message)
	require.Len(t, filterOp.Conditions, 1)
	assert.Equal(t, ir.OpIsNotEmpty, filterOp.Conditions[0].Operator)
	// Unary operator carries no comparison value.
	assert.Nil(t, filterOp.Conditions[0].Value)
}

func TestLowerStandaloneMerge(t *testing.T) {
	// A merge that no branch claims still lowers, as a pass-through.
	merge := node("merge-1", graph.KindMerge)
	d := doc(
		[]graph.Node{cronNode("trigger-1"), httpNode("fetch-1"), merge, returnNode("ret-1", "done")},
		[]graph.Edge{
			edge("trigger-1", "fetch-1"), edge("fetch-1", "merge-1"), edge("merge-1", "ret-1"),
		},
	)
	result := lowerDoc(t, d)

	mergeOp := findStep(t, result.Body, "merge-1").Op.(*ir.MergeOp)
	assert.Equal(t, "unknown", mergeOp.BranchStepID)
	assert.Equal(t, ir.MergePassThrough, mergeOp.Strategy.Kind)
}

func TestLowerUnknownCompareOpFallsBack(t *testing.T) {
	assert.Equal(t, ir.OpEquals, parseCompareOp("definitelyNotAnOperator"))
	assert.Equal(t, ir.OpGte, parseCompareOp("gte"))
}

func TestLowerConvenienceNodeWithoutExpander(t *testing.T) {
	mint := node("mint-1", graph.KindMintToken)
	d := doc(
		[]graph.Node{cronNode("trigger-1"), mint},
		[]graph.Edge{edge("trigger-1", "mint-1")},
	)
	g, diags := graph.Build(d)
	require.False(t, diags.HasErrors())

	result, diags := Lower(d, g, Options{})
	assert.Nil(t, result)
	require.True(t, diags.HasErrors())
	assert.Equal(t, []string{"L003"}, diags.Codes())
}
