package config

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Compiler: DefaultCompilerConfig(),
		Log:      DefaultLogConfig(),
	}
}

// DefaultCompilerConfig 返回默认编译器配置
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		Budget: BudgetConfig{
			MaxHTTPCalls: 5,
			MaxEvmReads:  10,
			MaxEvmWrites: 5,
		},
		DefaultReturnValue: "ok",
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{"stderr"},
	}
}
