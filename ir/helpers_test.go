package ir

// Builders shared by the ir tests.

func returnStep(id string) Step {
	return Step{
		ID:            id,
		SourceNodeIDs: []string{id},
		Label:         "Return",
		Op:            &ReturnOp{Expression: String("ok")},
	}
}

func httpStep(id string) Step {
	return Step{
		ID:            id,
		SourceNodeIDs: []string{id},
		Label:         "HTTP",
		Op: &HTTPRequestOp{
			Method:         MethodGet,
			URL:            String("https://api.example.com/data"),
			ResponseFormat: ResponseJSON,
			Consensus:      Consensus{Kind: ConsensusIdentical},
		},
		Output: &OutputBinding{VariableName: "step_" + id, TypeHint: "any"},
	}
}

func evmReadStep(id, clientBinding string) Step {
	return Step{
		ID:            id,
		SourceNodeIDs: []string{id},
		Label:         "Read",
		Op: &EvmReadOp{
			EvmClientBinding: clientBinding,
			ContractAddress:  String("0xabc"),
			FunctionName:     "totalSupply",
			ABIJSON:          "[]",
		},
		Output: &OutputBinding{VariableName: "step_" + id, TypeHint: "any"},
	}
}

func evmWriteStep(id, clientBinding string) Step {
	return Step{
		ID:            id,
		SourceNodeIDs: []string{id},
		Label:         "Write",
		Op: &EvmWriteOp{
			EvmClientBinding: clientBinding,
			ReceiverAddress:  String("0xabc"),
			GasLimit:         Integer(100000),
			EncodedData:      Raw("0x"),
		},
		Output: &OutputBinding{VariableName: "step_" + id, TypeHint: "any"},
	}
}

// branchStep builds a reconverging branch. ReconvergeAt is set when mergeID
// is non-empty.
func branchStep(id, mergeID string, trueArm, falseArm []Step) Step {
	return Step{
		ID:            id,
		SourceNodeIDs: []string{id},
		Label:         "Branch",
		Op: &BranchOp{
			Conditions: []Condition{{
				Field:    Config("threshold"),
				Operator: OpGt,
				Value:    exprPtr(Integer(10)),
			}},
			CombineWith:  CombineAnd,
			TrueBranch:   Block{Steps: trueArm},
			FalseBranch:  Block{Steps: falseArm},
			ReconvergeAt: mergeID,
		},
	}
}

func mergeStep(id, branchID string) Step {
	return Step{
		ID:            id,
		SourceNodeIDs: []string{id},
		Label:         "Merge",
		Op: &MergeOp{
			BranchStepID: branchID,
			Strategy:     MergeStrategy{Kind: MergePassThrough},
		},
		Output: &OutputBinding{VariableName: "step_" + id, TypeHint: "any"},
	}
}

func exprPtr(e ValueExpr) *ValueExpr { return &e }

// minimalIR is a cron-triggered workflow whose body is the given steps.
func minimalIR(steps ...Step) *WorkflowIR {
	return &WorkflowIR{
		Metadata: Metadata{
			ID:        "wf-1",
			Name:      "test workflow",
			Version:   "1.0.0",
			IsTestnet: true,
		},
		Trigger:      &CronTrigger{Schedule: Config("schedule")},
		TriggerParam: ParamCron,
		ConfigSchema: []ConfigField{{Name: "schedule", Type: FieldString}},
		Body:         Block{Steps: steps},
	}
}

func violationCodes(violations []Violation) []string {
	codes := make([]string, len(violations))
	for i, v := range violations {
		codes[i] = v.Code
	}
	return codes
}
