// Copyright (c) FlowC Authors.
// Licensed under the MIT License.

/*
Package graph 提供可视化工作流文档模型与图查询。

# 概述

graph 包定义拖拽编辑器产出的节点-边文档（Document）、由文档构建的
邻接结构（Graph）、拓扑排序（TopoSort）以及降级前的结构化校验
（ValidateStructural / ValidateNodeConfigs）。

# 核心类型与函数

  - Document / Node / Edge  — 可序列化的工作流文档（JSON / YAML）
  - NodeKind                — 节点种类标签（触发器、动作、控制流、便捷节点）
  - Graph                   — 邻接结构：Successors / Predecessors / ReachableFrom
  - TopoSort                — Kahn 拓扑排序，环路返回 CycleError
  - ValidateStructural      — V 系列图级校验规则
  - ValidateNodeConfigs     — N 系列节点配置校验规则
*/
package graph
