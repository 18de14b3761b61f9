package ir

import (
	"fmt"

	"github.com/BaSui01/flowc/types"
)

// Budget caps the external capability calls a single execution may make.
type Budget struct {
	MaxHTTPCalls int `json:"max_http_calls" yaml:"max_http_calls"`
	MaxEvmReads  int `json:"max_evm_reads" yaml:"max_evm_reads"`
	MaxEvmWrites int `json:"max_evm_writes" yaml:"max_evm_writes"`
}

// DefaultBudget returns the runtime's per-execution limits.
func DefaultBudget() Budget {
	return Budget{MaxHTTPCalls: 5, MaxEvmReads: 10, MaxEvmWrites: 5}
}

// Violation is one failed invariant.
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// StepID is empty for whole-workflow violations.
	StepID string `json:"step_id,omitempty"`
}

// Diagnostic converts the violation into the shared diagnostic shape.
func (v Violation) Diagnostic() types.Diagnostic {
	return types.IRValidate(v.Code, v.Message, v.StepID)
}

// Validate checks every IR invariant and returns all violations found.
// It never mutates the IR. An empty result means the IR is emitter-ready.
func Validate(ir *WorkflowIR, budget Budget) []Violation {
	v := &validator{budget: budget}

	v.checkBodyNonEmpty(ir)
	v.checkUniqueStepIDs(ir)
	v.checkForwardBindings(ir)
	v.checkBranchMergeConsistency(ir)
	v.checkSecretRefs(ir)
	v.checkEvmChainRefs(ir)
	v.checkBudget(ir)
	v.checkReturnPaths(ir)

	return v.violations
}

type validator struct {
	budget     Budget
	violations []Violation
}

func (v *validator) add(code, message, stepID string) {
	v.violations = append(v.violations, Violation{Code: code, Message: message, StepID: stepID})
}

func (v *validator) checkBodyNonEmpty(ir *WorkflowIR) {
	if len(ir.Body.Steps) == 0 {
		v.add("E001", "workflow body must contain at least one step", "")
	}
}

func (v *validator) checkUniqueStepIDs(ir *WorkflowIR) {
	seen := make(map[string]struct{})
	v.collectStepIDs(&ir.Body, seen)
}

func (v *validator) collectStepIDs(block *Block, seen map[string]struct{}) {
	for i := range block.Steps {
		step := &block.Steps[i]
		if _, dup := seen[step.ID]; dup {
			v.add("E002", fmt.Sprintf("duplicate step ID '%s'", step.ID), step.ID)
		}
		seen[step.ID] = struct{}{}
		if branch, ok := step.Op.(*BranchOp); ok {
			v.collectStepIDs(&branch.TrueBranch, seen)
			v.collectStepIDs(&branch.FalseBranch, seen)
		}
	}
}

func (v *validator) checkForwardBindings(ir *WorkflowIR) {
	v.checkBlockBindings(&ir.Body, NewScope())
}

// checkBlockBindings verifies that every binding reference in the block
// points to a step already in scope. Each branch arm validates against a
// clone of the scope at the branch, and a step's own output enters the
// scope only after its references are checked.
func (v *validator) checkBlockBindings(block *Block, scope *Scope) {
	for i := range block.Steps {
		step := &block.Steps[i]

		for _, ref := range stepBindingRefs(step) {
			if !scope.Has(ref) {
				v.add("E003", fmt.Sprintf(
					"step '%s' references binding '%s' which is not in scope (not defined in a prior step or an ancestor block)",
					step.ID, ref), step.ID)
			}
		}

		if branch, ok := step.Op.(*BranchOp); ok {
			v.checkBlockBindings(&branch.TrueBranch, scope.Clone())
			v.checkBlockBindings(&branch.FalseBranch, scope.Clone())
		}

		if step.Output != nil {
			scope.Add(step.ID)
		}
	}
}

// stepBindingRefs extracts the step IDs referenced by a step's operation.
// Branch arms are excluded; they are walked with their own scopes.
func stepBindingRefs(step *Step) []string {
	var refs []string
	appendRefs := func(exprs ...ValueExpr) {
		for _, e := range exprs {
			e.bindingRefs(&refs)
		}
	}
	appendConditions := func(conds []Condition) {
		for _, c := range conds {
			appendRefs(c.Field)
			if c.Value != nil {
				appendRefs(*c.Value)
			}
		}
	}

	switch op := step.Op.(type) {
	case *HTTPRequestOp:
		appendRefs(op.URL)
		for _, kv := range op.Headers {
			appendRefs(kv.Value)
		}
		for _, kv := range op.QueryParams {
			appendRefs(kv.Value)
		}
		if op.Body != nil {
			appendRefs(op.Body.Data)
		}
	case *EvmReadOp:
		appendRefs(op.ContractAddress)
		for _, arg := range op.Args {
			appendRefs(arg.Value)
		}
		if op.FromAddress != nil {
			appendRefs(*op.FromAddress)
		}
		if op.BlockNumber != nil {
			appendRefs(*op.BlockNumber)
		}
	case *EvmWriteOp:
		appendRefs(op.ReceiverAddress, op.GasLimit, op.EncodedData)
		if op.ValueWei != nil {
			appendRefs(*op.ValueWei)
		}
	case *CodeOp:
		for _, b := range op.InputBindings {
			appendRefs(b.Value)
		}
	case *JSONParseOp:
		appendRefs(op.Input)
	case *ABIEncodeOp:
		for _, m := range op.DataMappings {
			appendRefs(m.Value)
		}
	case *ABIDecodeOp:
		appendRefs(op.Input)
	case *BranchOp:
		appendConditions(op.Conditions)
	case *FilterOp:
		appendConditions(op.Conditions)
	case *MergeOp:
		for _, in := range op.Inputs {
			appendRefs(in.Value)
		}
	case *AICallOp:
		appendRefs(op.BaseURL, op.Model, op.SystemPrompt, op.UserPrompt)
	case *LogOp:
		appendRefs(op.Message)
	case *ErrorThrowOp:
		appendRefs(op.Message)
	case *ReturnOp:
		appendRefs(op.Expression)
	}
	return refs
}

// checkBranchMergeConsistency verifies that a reconverging branch is
// immediately followed by its merge, and that the merge points back at it.
func (v *validator) checkBranchMergeConsistency(ir *WorkflowIR) {
	v.checkBlockBranchMerge(&ir.Body)
}

func (v *validator) checkBlockBranchMerge(block *Block) {
	for i := range block.Steps {
		step := &block.Steps[i]
		branch, ok := step.Op.(*BranchOp)
		if !ok {
			continue
		}

		if branch.ReconvergeAt != "" {
			if i+1 >= len(block.Steps) {
				v.add("E004", fmt.Sprintf(
					"branch '%s' declares reconvergence at '%s', but there are no more steps in this block",
					step.ID, branch.ReconvergeAt), step.ID)
			} else {
				next := &block.Steps[i+1]
				if next.ID != branch.ReconvergeAt {
					v.add("E004", fmt.Sprintf(
						"branch '%s' declares reconvergence at '%s', but the next step is '%s': a merge must immediately follow its branch",
						step.ID, branch.ReconvergeAt, next.ID), step.ID)
				}
				if merge, ok := next.Op.(*MergeOp); ok {
					if merge.BranchStepID != step.ID {
						v.add("E005", fmt.Sprintf(
							"merge '%s' references branch '%s', but should reference '%s'",
							next.ID, merge.BranchStepID, step.ID), next.ID)
					}
				} else {
					v.add("E006", fmt.Sprintf(
						"step '%s' should be a merge operation (reconvergence target of branch '%s')",
						next.ID, step.ID), next.ID)
				}
			}
		}

		v.checkBlockBranchMerge(&branch.TrueBranch)
		v.checkBlockBranchMerge(&branch.FalseBranch)
	}
}

func (v *validator) checkSecretRefs(ir *WorkflowIR) {
	declared := make(map[string]struct{}, len(ir.RequiredSecrets))
	for _, s := range ir.RequiredSecrets {
		declared[s.Name] = struct{}{}
	}
	v.checkBlockSecretRefs(&ir.Body, declared)
}

func (v *validator) checkBlockSecretRefs(block *Block, declared map[string]struct{}) {
	for i := range block.Steps {
		step := &block.Steps[i]
		for _, name := range stepSecretRefs(step) {
			if _, ok := declared[name]; !ok {
				v.add("E007", fmt.Sprintf(
					"secret '%s' used in step '%s' is not declared in required secrets",
					name, step.ID), step.ID)
			}
		}
		if branch, ok := step.Op.(*BranchOp); ok {
			v.checkBlockSecretRefs(&branch.TrueBranch, declared)
			v.checkBlockSecretRefs(&branch.FalseBranch, declared)
		}
	}
}

// stepSecretRefs returns the secret names a step reads. Branch arms are
// excluded; they are walked by the caller.
func stepSecretRefs(step *Step) []string {
	switch op := step.Op.(type) {
	case *GetSecretOp:
		return []string{op.SecretName}
	case *HTTPRequestOp:
		if op.Authentication != nil {
			return op.Authentication.SecretNames()
		}
	case *AICallOp:
		return []string{op.APIKeySecret}
	}
	return nil
}

func (v *validator) checkEvmChainRefs(ir *WorkflowIR) {
	declared := make(map[string]struct{}, len(ir.EvmChains))
	for _, c := range ir.EvmChains {
		declared[c.BindingName] = struct{}{}
	}

	if trigger, ok := ir.Trigger.(*EvmLogTrigger); ok {
		if _, found := declared[trigger.EvmClientBinding]; !found {
			v.add("E008", fmt.Sprintf(
				"trigger references chain client '%s' which is not in the declared chains",
				trigger.EvmClientBinding), "")
		}
	}

	v.checkBlockEvmRefs(&ir.Body, declared)
}

func (v *validator) checkBlockEvmRefs(block *Block, declared map[string]struct{}) {
	for i := range block.Steps {
		step := &block.Steps[i]

		var binding string
		switch op := step.Op.(type) {
		case *EvmReadOp:
			binding = op.EvmClientBinding
		case *EvmWriteOp:
			binding = op.EvmClientBinding
		}
		if binding != "" {
			if _, ok := declared[binding]; !ok {
				v.add("E008", fmt.Sprintf(
					"step '%s' references chain client '%s' which is not in the declared chains",
					step.ID, binding), step.ID)
			}
		}

		if branch, ok := step.Op.(*BranchOp); ok {
			v.checkBlockEvmRefs(&branch.TrueBranch, declared)
			v.checkBlockEvmRefs(&branch.FalseBranch, declared)
		}
	}
}

type capabilityCount struct {
	http, evmReads, evmWrites int
}

func (v *validator) checkBudget(ir *WorkflowIR) {
	count := countCapabilities(&ir.Body)

	if count.http > v.budget.MaxHTTPCalls {
		v.add("E009", fmt.Sprintf(
			"workflow uses %d HTTP calls, exceeding the limit of %d",
			count.http, v.budget.MaxHTTPCalls), "")
	}
	if count.evmReads > v.budget.MaxEvmReads {
		v.add("E010", fmt.Sprintf(
			"workflow uses %d contract reads, exceeding the limit of %d",
			count.evmReads, v.budget.MaxEvmReads), "")
	}
	if count.evmWrites > v.budget.MaxEvmWrites {
		v.add("E011", fmt.Sprintf(
			"workflow uses %d contract writes, exceeding the limit of %d",
			count.evmWrites, v.budget.MaxEvmWrites), "")
	}
}

// countCapabilities tallies external calls per execution. Only one arm of a
// branch runs, so a branch contributes the maximum of its two arms.
func countCapabilities(block *Block) capabilityCount {
	var count capabilityCount
	for i := range block.Steps {
		switch op := block.Steps[i].Op.(type) {
		case *HTTPRequestOp, *AICallOp:
			count.http++
		case *EvmReadOp:
			count.evmReads++
		case *EvmWriteOp:
			count.evmWrites++
		case *BranchOp:
			trueCount := countCapabilities(&op.TrueBranch)
			falseCount := countCapabilities(&op.FalseBranch)
			count.http += max(trueCount.http, falseCount.http)
			count.evmReads += max(trueCount.evmReads, falseCount.evmReads)
			count.evmWrites += max(trueCount.evmWrites, falseCount.evmWrites)
		}
	}
	return count
}

func (v *validator) checkReturnPaths(ir *WorkflowIR) {
	if !blockTerminates(&ir.Body) {
		v.add("E012", "not all execution paths end with a return or error step", "")
	}
}

// blockTerminates reports whether every execution path through the block
// ends with a Return or ErrorThrow.
func blockTerminates(block *Block) bool {
	if len(block.Steps) == 0 {
		return false
	}
	last := &block.Steps[len(block.Steps)-1]
	switch op := last.Op.(type) {
	case *ReturnOp, *ErrorThrowOp:
		return true
	case *BranchOp:
		// A reconverging branch continues into its merge, so it can never be
		// the terminator. A non-reconverging branch terminates only if both
		// arms do.
		if op.ReconvergeAt == "" {
			return blockTerminates(&op.TrueBranch) && blockTerminates(&op.FalseBranch)
		}
		return false
	}
	return false
}
