// Copyright (c) FlowC Authors.
// Licensed under the MIT License.

/*
Package types 提供 FlowC 编译器的全局共享类型定义。

# 概述

types 包定义各编译阶段（Parse / Validate / Lower / IRValidate / Codegen）
共用的诊断模型。所有阶段产生的错误均以 Diagnostic 值返回（而非 panic），
携带稳定的错误码、阶段标签、消息与可选的节点标识，便于调用方统一渲染。

# 核心类型

  - Phase       — 编译阶段标签
  - Diagnostic  — 统一诊断值（Code / Phase / Message / NodeID）
  - Diagnostics — 诊断列表与聚合辅助方法
*/
package types
