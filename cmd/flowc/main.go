// =============================================================================
// FlowC 主入口
// =============================================================================
// 工作流编译器命令行
//
// 使用方法:
//
//	flowc build workflow.json               # 编译并输出 IR JSON
//	flowc build workflow.yaml -o out.json   # 输出到文件
//	flowc build workflow.json --config flowc.yaml
//	flowc check workflow.json               # 只做校验，不输出 IR
//	flowc version                           # 显示版本信息
// =============================================================================
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/flowc"
	"github.com/BaSui01/flowc/config"
	"github.com/BaSui01/flowc/graph"
	"github.com/BaSui01/flowc/types"
)

// 版本信息（构建时注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		runBuild(os.Args[2:], true)
	case "check":
		runBuild(os.Args[2:], false)
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// runBuild 编译一个工作流文档；emitIR 为 false 时只报告诊断
func runBuild(args []string, emitIR bool) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", "", "配置文件路径 (YAML)")
	outPath := fs.String("o", "", "IR 输出路径（默认 stdout）")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: flowc build <workflow.json|workflow.yaml>")
		os.Exit(1)
	}
	docPath := fs.Arg(0)

	cfg, err := config.NewLoader().WithConfigPath(*configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "flowc: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	doc, err := graph.LoadDocument(docPath)
	if err != nil {
		logger.Error("failed to load workflow document",
			zap.String("path", docPath), zap.Error(err))
		os.Exit(1)
	}

	result, diags := flowc.CompileDocument(doc,
		flowc.WithLogger(logger),
		flowc.WithConfig(cfg),
	)
	reportDiagnostics(logger, diags)
	if diags.HasErrors() {
		os.Exit(1)
	}

	logger.Info("workflow compiled",
		zap.String("workflow", result.Metadata.ID),
		zap.Int("steps", len(result.Body.Steps)))

	if !emitIR {
		return
	}

	data, err := result.MarshalJSON()
	if err != nil {
		logger.Error("failed to serialize IR", zap.Error(err))
		os.Exit(1)
	}
	if *outPath == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		logger.Error("failed to write IR", zap.String("path", *outPath), zap.Error(err))
		os.Exit(1)
	}
	logger.Info("IR written", zap.String("path", *outPath))
}

// reportDiagnostics 逐条输出诊断
func reportDiagnostics(logger *zap.Logger, diags types.Diagnostics) {
	for _, d := range diags {
		logger.Error("diagnostic",
			zap.String("phase", string(d.Phase)),
			zap.String("code", d.Code),
			zap.String("node", d.NodeID),
			zap.String("message", d.Message))
	}
}

// initLogger 根据配置构建 zap logger
func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         cfg.Format,
		EncoderConfig:    encoderConfig,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func printVersion() {
	fmt.Printf("FlowC %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
}

func printUsage() {
	fmt.Println(`FlowC - workflow DAG compiler

Usage:
  flowc build <workflow.json|workflow.yaml> [-o out.json] [--config flowc.yaml]
  flowc check <workflow.json|workflow.yaml> [--config flowc.yaml]
  flowc version
  flowc help`)
}
