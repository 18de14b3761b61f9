package ir

// ExprKind discriminates the variants of ValueExpr.
type ExprKind string

const (
	ExprLiteral     ExprKind = "literal"
	ExprBinding     ExprKind = "binding"
	ExprConfig      ExprKind = "configRef"
	ExprTriggerData ExprKind = "triggerDataRef"
	ExprTemplate    ExprKind = "template"
	ExprRaw         ExprKind = "rawExpr"
)

// ValueExpr is the unified representation of any data reference in the IR.
// It replaces `{{nodeId.field}}` references from the visual graph. Exactly
// one variant's fields are populated, selected by Kind.
type ValueExpr struct {
	Kind ExprKind `json:"kind"`

	// Literal payload (Kind == ExprLiteral).
	Literal *LiteralValue `json:"literal,omitempty"`

	// Binding reference to a previous step's output (Kind == ExprBinding).
	// FieldPath is a dot-separated path; empty means the entire value.
	StepID    string `json:"step_id,omitempty"`
	FieldPath string `json:"field_path,omitempty"`

	// Field of the workflow config or trigger data
	// (Kind == ExprConfig or ExprTriggerData).
	Field string `json:"field,omitempty"`

	// Template parts (Kind == ExprTemplate).
	Parts []TemplatePart `json:"parts,omitempty"`

	// Raw expression emitted verbatim by the emitter (Kind == ExprRaw).
	Expr string `json:"expr,omitempty"`
}

// LiteralKind discriminates the variants of LiteralValue.
type LiteralKind string

const (
	LitString  LiteralKind = "string"
	LitNumber  LiteralKind = "number"
	LitInteger LiteralKind = "integer"
	LitBoolean LiteralKind = "boolean"
	LitNull    LiteralKind = "null"
	// LitJSON carries a JSON object or array as a string.
	LitJSON LiteralKind = "json"
)

// LiteralValue is a literal constant: "hello", 42, true.
type LiteralValue struct {
	Kind    LiteralKind `json:"literal_type"`
	String  string      `json:"string,omitempty"`
	Number  float64     `json:"number,omitempty"`
	Integer int64       `json:"integer,omitempty"`
	Boolean bool        `json:"boolean,omitempty"`
	JSON    string      `json:"json,omitempty"`
}

// TemplatePartKind discriminates template parts.
type TemplatePartKind string

const (
	PartLit  TemplatePartKind = "lit"
	PartExpr TemplatePartKind = "expr"
)

// TemplatePart is one piece of an interpolated template string.
type TemplatePart struct {
	Kind TemplatePartKind `json:"part_type"`
	Lit  string           `json:"lit,omitempty"`
	Expr *ValueExpr       `json:"expr,omitempty"`
}

// String builds a string literal expression.
func String(s string) ValueExpr {
	return ValueExpr{Kind: ExprLiteral, Literal: &LiteralValue{Kind: LitString, String: s}}
}

// Number builds a floating-point literal expression.
func Number(n float64) ValueExpr {
	return ValueExpr{Kind: ExprLiteral, Literal: &LiteralValue{Kind: LitNumber, Number: n}}
}

// Integer builds an integer literal expression.
func Integer(n int64) ValueExpr {
	return ValueExpr{Kind: ExprLiteral, Literal: &LiteralValue{Kind: LitInteger, Integer: n}}
}

// Boolean builds a boolean literal expression.
func Boolean(b bool) ValueExpr {
	return ValueExpr{Kind: ExprLiteral, Literal: &LiteralValue{Kind: LitBoolean, Boolean: b}}
}

// Null builds a null literal expression.
func Null() ValueExpr {
	return ValueExpr{Kind: ExprLiteral, Literal: &LiteralValue{Kind: LitNull}}
}

// JSONValue builds a literal carrying a JSON object or array as a string.
func JSONValue(raw string) ValueExpr {
	return ValueExpr{Kind: ExprLiteral, Literal: &LiteralValue{Kind: LitJSON, JSON: raw}}
}

// Binding builds a reference to a previous step's output.
func Binding(stepID, fieldPath string) ValueExpr {
	return ValueExpr{Kind: ExprBinding, StepID: stepID, FieldPath: fieldPath}
}

// Config builds a reference to a workflow config field.
func Config(field string) ValueExpr {
	return ValueExpr{Kind: ExprConfig, Field: field}
}

// TriggerData builds a reference to a field of the trigger payload.
func TriggerData(field string) ValueExpr {
	return ValueExpr{Kind: ExprTriggerData, Field: field}
}

// Template builds an interpolated template expression.
func Template(parts ...TemplatePart) ValueExpr {
	return ValueExpr{Kind: ExprTemplate, Parts: parts}
}

// LitPart builds a literal template part.
func LitPart(s string) TemplatePart {
	return TemplatePart{Kind: PartLit, Lit: s}
}

// ExprPart builds an interpolated template part.
func ExprPart(e ValueExpr) TemplatePart {
	return TemplatePart{Kind: PartExpr, Expr: &e}
}

// Raw builds an escape-hatch expression emitted verbatim.
func Raw(expr string) ValueExpr {
	return ValueExpr{Kind: ExprRaw, Expr: expr}
}

// IsZero reports whether the expression is entirely unset.
func (e ValueExpr) IsZero() bool {
	return e.Kind == "" && e.Literal == nil && e.StepID == "" && e.FieldPath == "" &&
		e.Field == "" && len(e.Parts) == 0 && e.Expr == ""
}

// bindingRefs appends every binding reference reachable from this expression.
func (e ValueExpr) bindingRefs(refs *[]string) {
	switch e.Kind {
	case ExprBinding:
		*refs = append(*refs, e.StepID)
	case ExprTemplate:
		for _, p := range e.Parts {
			if p.Kind == PartExpr && p.Expr != nil {
				p.Expr.bindingRefs(refs)
			}
		}
	}
}
