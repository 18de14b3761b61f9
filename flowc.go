// Package flowc compiles visual node-and-edge workflow documents into a
// sequential, structured intermediate representation for an external code
// emitter.
//
// Usage:
//
//	import "github.com/BaSui01/flowc"
//
//	result, diags := flowc.Compile(documentJSON)
//	result, diags := flowc.Compile(documentJSON, flowc.WithBudget(ir.Budget{...}))
//
// Compile runs the full pipeline: parse → graph build → structural and
// node-config validation → lowering → IR validation. Diagnostics from every
// phase are collected; phases after a failed one do not run.
package flowc

import (
	"go.uber.org/zap"

	"github.com/BaSui01/flowc/config"
	"github.com/BaSui01/flowc/graph"
	"github.com/BaSui01/flowc/ir"
	"github.com/BaSui01/flowc/lower"
	"github.com/BaSui01/flowc/types"
)

// Option configures a compilation.
type Option func(*options)

type options struct {
	logger             *zap.Logger
	expander           lower.Expander
	budget             ir.Budget
	defaultReturnValue string
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:             zap.NewNop(),
		budget:             ir.DefaultBudget(),
		defaultReturnValue: "ok",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom zap logger. Default: no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithExpander sets the convenience-node expander.
func WithExpander(e lower.Expander) Option {
	return func(o *options) { o.expander = e }
}

// WithBudget overrides the capability budget enforced on the lowered IR.
func WithBudget(b ir.Budget) Option {
	return func(o *options) { o.budget = b }
}

// WithDefaultReturnValue overrides the value used by synthesized return steps.
func WithDefaultReturnValue(v string) Option {
	return func(o *options) { o.defaultReturnValue = v }
}

// WithConfig applies a loaded configuration's compiler settings.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.budget = cfg.Compiler.IRBudget()
		o.defaultReturnValue = cfg.Compiler.DefaultReturnValue
	}
}

// Compile parses a workflow document from JSON and compiles it. The IR is
// non-nil exactly when every phase before IR validation succeeded; IR
// validation violations are returned as diagnostics alongside the IR.
func Compile(data []byte, opts ...Option) (*ir.WorkflowIR, types.Diagnostics) {
	o := newOptions(opts)

	doc, err := graph.ParseDocument(data)
	if err != nil {
		return nil, types.Diagnostics{types.Parse("P001", err.Error())}
	}
	return compile(doc, o)
}

// CompileDocument compiles an already-parsed workflow document.
func CompileDocument(doc *graph.Document, opts ...Option) (*ir.WorkflowIR, types.Diagnostics) {
	return compile(doc, newOptions(opts))
}

func compile(doc *graph.Document, o *options) (*ir.WorkflowIR, types.Diagnostics) {
	log := o.logger.With(zap.String("workflow", doc.ID))
	log.Debug("compiling workflow",
		zap.String("name", doc.Name),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("edges", len(doc.Edges)))

	g, diags := graph.Build(doc)
	if diags.HasErrors() {
		log.Warn("graph build failed", zap.Strings("codes", diags.Codes()))
		return nil, diags
	}

	var all types.Diagnostics
	all = append(all, graph.ValidateStructural(doc, g)...)
	all = append(all, graph.ValidateNodeConfigs(doc)...)
	if all.HasErrors() {
		log.Warn("document validation failed", zap.Strings("codes", all.Codes()))
		return nil, all
	}

	result, diags := lower.Lower(doc, g, lower.Options{
		Expander:           o.expander,
		DefaultReturnValue: o.defaultReturnValue,
	})
	if diags.HasErrors() {
		log.Warn("lowering failed", zap.Strings("codes", diags.Codes()))
		return nil, diags
	}

	var irDiags types.Diagnostics
	for _, v := range ir.Validate(result, o.budget) {
		irDiags = append(irDiags, v.Diagnostic())
	}
	if irDiags.HasErrors() {
		log.Warn("IR validation failed", zap.Strings("codes", irDiags.Codes()))
		return result, irDiags
	}

	log.Debug("workflow compiled", zap.Int("steps", len(result.Body.Steps)))
	return result, nil
}

// SourceFile is one generated output file.
type SourceFile struct {
	Path     string
	Contents []byte
}

// Emitter translates a validated IR into target source files. Code emission
// lives outside this module; the compiler only defines the contract.
type Emitter interface {
	Emit(workflow *ir.WorkflowIR) ([]SourceFile, error)
}
