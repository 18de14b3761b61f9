// Copyright (c) FlowC Authors.
// Licensed under the MIT License.

/*
Package testutil 提供 FlowC 测试的共享工具和数据工厂。

# 概述

testutil 包为整个项目的单元测试提供统一的文档与 IR 构造辅助，
避免各包重复实现相似的测试夹具。

# 核心能力

  - 文档工厂: NewDocument / NewNode / NewEdge / LinearWorkflow /
    DiamondWorkflow，快速构造可编译的工作流文档
  - IR 工厂: MinimalIR / ReturnStep / HTTPStep，构造可独立校验的 IR 片段
  - 数据工具: MustJSON / MustParseDocument，简化测试数据构造

# 使用示例

	doc := testutil.LinearWorkflow()
	g, diags := graph.Build(doc)
	testutil.RequireNoDiagnostics(t, diags)
*/
package testutil
