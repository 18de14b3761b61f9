// Copyright (c) FlowC Authors.
// Licensed under the MIT License.

/*
Package ir 定义工作流编译器的中间表示（IR）及其不变量校验。

# 概述

ir 包是可视化节点-边图（输入）与外部代码发射器（输出）之间的桥梁。
降级阶段将 DAG 转换为带结构化分支的顺序执行计划（WorkflowIR），
校验器在发射前检查全部不变量并一次性返回所有违规。

# 核心类型与函数

  - WorkflowIR           — 完整的编译产物：元数据、触发器、密钥、链、执行体
  - Block / Step         — 顺序执行计划；分支臂是嵌套 Block
  - Operation            — 封闭的操作集合（HTTP、EVM 读写、分支、合并等）
  - ValueExpr            — 统一的数据引用模型（字面量、绑定、配置、模板）
  - Scope                — 仅向前、块级作用域的绑定集合
  - Validate             — E 系列不变量校验，返回全部违规而非首个

# 序列化

Operation 与 Trigger 通过 "type" 判别字段进行 JSON 往返；
反序列化后的 IR 与原 IR 产生完全相同的校验结果。
*/
package ir
