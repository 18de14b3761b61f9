// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
// 提供工作流文档与 IR 的测试数据工厂
//
// 使用方法:
//
//	doc := testutil.LinearWorkflow()
//	ir := testutil.MinimalIR(testutil.ReturnStep("ret-1"))
// =============================================================================
package testutil

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/BaSui01/flowc/graph"
	"github.com/BaSui01/flowc/ir"
	"github.com/BaSui01/flowc/types"
)

// =============================================================================
// 🎯 文档工厂
// =============================================================================

// NewNode 构造指定种类的空配置节点
func NewNode(id string, kind graph.NodeKind) graph.Node {
	return graph.Node{
		ID:   id,
		Kind: kind,
		Data: graph.NodeData{Label: "Node " + id},
	}
}

// NewEdge 构造两个节点之间的边
func NewEdge(source, target string) graph.Edge {
	return graph.Edge{
		ID:     fmt.Sprintf("e-%s-%s", source, target),
		Source: source,
		Target: target,
	}
}

// NewBranchEdge 构造带 true/false 手柄的条件分支边
func NewBranchEdge(source, target, handle string) graph.Edge {
	e := NewEdge(source, target)
	e.SourceHandle = handle
	return e
}

// NewDocument 构造带节点与边的工作流文档
func NewDocument(nodes []graph.Node, edges []graph.Edge) *graph.Document {
	return &graph.Document{
		ID:      "wf-fixture",
		Name:    "fixture workflow",
		Version: "1.0.0",
		Nodes:   nodes,
		Edges:   edges,
	}
}

// LinearWorkflow 返回一条最小可编译链: cron 触发器 → HTTP 请求 → 返回
func LinearWorkflow() *graph.Document {
	trigger := NewNode("trigger-1", graph.KindCronTrigger)
	trigger.Data.Config.Schedule = "0 */5 * * * *"

	fetch := NewNode("fetch-1", graph.KindHTTPRequest)
	fetch.Data.Config.Method = "GET"
	fetch.Data.Config.URL = "https://api.example.com/price"

	ret := NewNode("ret-1", graph.KindReturn)
	ret.Data.Config.ReturnExpression = "{{fetch-1.body}}"

	return NewDocument(
		[]graph.Node{trigger, fetch, ret},
		[]graph.Edge{NewEdge("trigger-1", "fetch-1"), NewEdge("fetch-1", "ret-1")},
	)
}

// DiamondWorkflow 返回一个两臂各自终止的条件分叉工作流
func DiamondWorkflow() *graph.Document {
	trigger := NewNode("trigger-1", graph.KindCronTrigger)
	trigger.Data.Config.Schedule = "0 */5 * * * *"

	cond := NewNode("if-1", graph.KindIf)
	cond.Data.Config.Conditions = []graph.ConditionDef{
		{Field: "{{config.threshold}}", Operator: "gt", Value: "100"},
	}

	retHigh := NewNode("ret-high", graph.KindReturn)
	retHigh.Data.Config.ReturnExpression = "high"
	retLow := NewNode("ret-low", graph.KindReturn)
	retLow.Data.Config.ReturnExpression = "low"

	return NewDocument(
		[]graph.Node{trigger, cond, retHigh, retLow},
		[]graph.Edge{
			NewEdge("trigger-1", "if-1"),
			NewBranchEdge("if-1", "ret-high", "true"),
			NewBranchEdge("if-1", "ret-low", "false"),
		},
	)
}

// =============================================================================
// 🎯 IR 工厂
// =============================================================================

// ReturnStep 构造一个返回固定字符串的 Return 步骤
func ReturnStep(id string) ir.Step {
	return ir.Step{
		ID:            id,
		SourceNodeIDs: []string{id},
		Label:         "Return " + id,
		Op:            &ir.ReturnOp{Expression: ir.String("done")},
	}
}

// HTTPStep 构造一个带输出绑定的最小 HTTP 请求步骤
func HTTPStep(id string) ir.Step {
	return ir.Step{
		ID:            id,
		SourceNodeIDs: []string{id},
		Label:         "HTTP " + id,
		Op: &ir.HTTPRequestOp{
			Method:              ir.MethodGet,
			URL:                 ir.String("https://api.example.com/data"),
			ExpectedStatusCodes: []uint16{200},
			ResponseFormat:      ir.ResponseJSON,
			Consensus:           ir.Consensus{Kind: ir.ConsensusIdentical},
		},
		Output: &ir.OutputBinding{
			VariableName: "step_" + id,
			TypeHint:     "httpResponse",
		},
	}
}

// MinimalIR 构造带 cron 触发器与给定步骤的完整 IR
func MinimalIR(steps ...ir.Step) *ir.WorkflowIR {
	return &ir.WorkflowIR{
		Metadata: ir.Metadata{
			ID:      "wf-fixture",
			Name:    "fixture workflow",
			Version: "1.0.0",
		},
		Trigger:      &ir.CronTrigger{Schedule: ir.Config("schedule")},
		TriggerParam: ir.ParamCron,
		ConfigSchema: []ir.ConfigField{
			{Name: "schedule", Type: ir.FieldString, DefaultValue: "0 */5 * * * *"},
		},
		Body: ir.Block{Steps: steps},
	}
}

// =============================================================================
// 🔍 断言与数据工具
// =============================================================================

// RequireNoDiagnostics 断言编译阶段没有产生诊断
func RequireNoDiagnostics(t *testing.T, diags types.Diagnostics) {
	t.Helper()
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

// MustJSON 序列化为 JSON，失败时 panic
func MustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal failed: %v", err))
	}
	return data
}

// MustParseDocument 解析工作流 JSON，失败时 panic
func MustParseDocument(data []byte) *graph.Document {
	doc, err := graph.ParseDocument(data)
	if err != nil {
		panic(fmt.Sprintf("testutil: parse failed: %v", err))
	}
	return doc
}
