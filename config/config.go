package config

import (
	"fmt"
	"strings"

	"github.com/BaSui01/flowc/ir"
)

// Config 是 FlowC 的完整配置结构
type Config struct {
	// Compiler 编译器配置
	Compiler CompilerConfig `yaml:"compiler" env:"COMPILER"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`
}

// CompilerConfig 编译器配置
type CompilerConfig struct {
	// 容量预算
	Budget BudgetConfig `yaml:"budget" env:"BUDGET"`
	// 叶子节点自动补全 Return 步骤时使用的默认返回值
	DefaultReturnValue string `yaml:"default_return_value" env:"DEFAULT_RETURN_VALUE"`
}

// BudgetConfig 单个工作流的容量上限
type BudgetConfig struct {
	// HTTP 调用上限（AI 调用计入）
	MaxHTTPCalls int `yaml:"max_http_calls" env:"MAX_HTTP_CALLS"`
	// 链上读取上限
	MaxEvmReads int `yaml:"max_evm_reads" env:"MAX_EVM_READS"`
	// 链上写入上限
	MaxEvmWrites int `yaml:"max_evm_writes" env:"MAX_EVM_WRITES"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// IRBudget 转换为 IR 校验器使用的预算值
func (c *CompilerConfig) IRBudget() ir.Budget {
	return ir.Budget{
		MaxHTTPCalls: c.Budget.MaxHTTPCalls,
		MaxEvmReads:  c.Budget.MaxEvmReads,
		MaxEvmWrites: c.Budget.MaxEvmWrites,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	if c.Compiler.Budget.MaxHTTPCalls <= 0 {
		errs = append(errs, "max_http_calls must be positive")
	}
	if c.Compiler.Budget.MaxEvmReads <= 0 {
		errs = append(errs, "max_evm_reads must be positive")
	}
	if c.Compiler.Budget.MaxEvmWrites <= 0 {
		errs = append(errs, "max_evm_writes must be positive")
	}
	if c.Compiler.DefaultReturnValue == "" {
		errs = append(errs, "default_return_value must not be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("unknown log format %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
