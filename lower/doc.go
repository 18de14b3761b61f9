// Copyright (c) FlowC Authors.
// Licensed under the MIT License.

/*
Package lower 将可视化工作流图降级为顺序化 IR。

# 概述

lower 包是编译器的核心阶段：按拓扑序遍历节点-边图，识别 if 节点的
分支/汇合模式并递归划分分支臂，最终产出 ir.WorkflowIR。触发器、
密钥与链资源在此阶段一并提取。

# 核心类型与函数

  - Lower              — 编排入口：拓扑排序 → 触发器 → 资源提取 → 执行体构建
  - Expander           — 便捷节点展开协作接口（默认 NopExpander 不展开）
  - ResolveValueExpr   — 将 {{nodeId.field}} 引用字符串解析为 ir.ValueExpr

# 分支结构化

汇合点 = 拓扑序中第一个同时出现在真假两臂可达集合里的节点。
两臂各自递归降级（消费集防止节点重复归属），Branch 步骤之后紧跟
Merge 步骤；无汇合点时两臂必须各自终止。叶子节点若非显式终止
则自动补一个 Return 步骤。
*/
package lower
