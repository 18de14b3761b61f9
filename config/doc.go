// Copyright (c) FlowC Authors.
// Licensed under the MIT License.

/*
Package config 提供 FlowC 编译器的配置加载。

# 概述

config 包定义编译器的可调参数（容量预算、默认返回值、日志行为），
并提供 YAML 文件 + 环境变量的统一加载器。

配置优先级: 默认值 → YAML 文件 → 环境变量。

# 核心类型与函数

  - Config / CompilerConfig / BudgetConfig / LogConfig — 配置结构
  - DefaultConfig — 各项的合理默认值
  - Loader        — Builder 模式加载器（WithConfigPath / WithEnvPrefix）
*/
package config
