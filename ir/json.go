package ir

import (
	"encoding/json"
	"fmt"
)

// taggedMarshal serializes v and injects the "type" discriminator.
func taggedMarshal(v interface{}, tag string) (json.RawMessage, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	fields["type"] = json.RawMessage(fmt.Sprintf("%q", tag))
	return json.Marshal(fields)
}

// typeTag extracts the "type" discriminator from a tagged payload.
func typeTag(data json.RawMessage) (string, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("failed to read type discriminator: %w", err)
	}
	if envelope.Type == "" {
		return "", fmt.Errorf("missing type discriminator")
	}
	return envelope.Type, nil
}

// MarshalOperation serializes an operation with its "type" discriminator.
func MarshalOperation(op Operation) (json.RawMessage, error) {
	if op == nil {
		return json.RawMessage("null"), nil
	}
	return taggedMarshal(op, op.OpType())
}

// UnmarshalOperation deserializes a tagged operation payload.
func UnmarshalOperation(data json.RawMessage) (Operation, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	tag, err := typeTag(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal operation: %w", err)
	}

	var op Operation
	switch tag {
	case OpHTTPRequest:
		op = &HTTPRequestOp{}
	case OpEvmRead:
		op = &EvmReadOp{}
	case OpEvmWrite:
		op = &EvmWriteOp{}
	case OpGetSecret:
		op = &GetSecretOp{}
	case OpCode:
		op = &CodeOp{}
	case OpJSONParse:
		op = &JSONParseOp{}
	case OpABIEncode:
		op = &ABIEncodeOp{}
	case OpABIDecode:
		op = &ABIDecodeOp{}
	case OpBranch:
		op = &BranchOp{}
	case OpFilter:
		op = &FilterOp{}
	case OpMerge:
		op = &MergeOp{}
	case OpAICall:
		op = &AICallOp{}
	case OpLog:
		op = &LogOp{}
	case OpErrorThrow:
		op = &ErrorThrowOp{}
	case OpReturn:
		op = &ReturnOp{}
	default:
		return nil, fmt.Errorf("unknown operation type '%s'", tag)
	}
	if err := json.Unmarshal(data, op); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s operation: %w", tag, err)
	}
	return op, nil
}

// MarshalTrigger serializes a trigger with its "type" discriminator.
func MarshalTrigger(t Trigger) (json.RawMessage, error) {
	if t == nil {
		return json.RawMessage("null"), nil
	}
	return taggedMarshal(t, t.TriggerType())
}

// UnmarshalTrigger deserializes a tagged trigger payload.
func UnmarshalTrigger(data json.RawMessage) (Trigger, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	tag, err := typeTag(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger: %w", err)
	}

	var t Trigger
	switch tag {
	case TriggerCron:
		t = &CronTrigger{}
	case TriggerHTTP:
		t = &HTTPTrigger{}
	case TriggerEvmLog:
		t = &EvmLogTrigger{}
	default:
		return nil, fmt.Errorf("unknown trigger type '%s'", tag)
	}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s trigger: %w", tag, err)
	}
	return t, nil
}

type stepJSON struct {
	ID            string          `json:"id"`
	SourceNodeIDs []string        `json:"source_node_ids"`
	Label         string          `json:"label"`
	Operation     json.RawMessage `json:"operation"`
	Output        *OutputBinding  `json:"output,omitempty"`
}

// MarshalJSON implements json.Marshaler with a tagged operation envelope.
func (s Step) MarshalJSON() ([]byte, error) {
	opData, err := MarshalOperation(s.Op)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal step '%s': %w", s.ID, err)
	}
	return json.Marshal(stepJSON{
		ID:            s.ID,
		SourceNodeIDs: s.SourceNodeIDs,
		Label:         s.Label,
		Operation:     opData,
		Output:        s.Output,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw stepJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal step: %w", err)
	}
	op, err := UnmarshalOperation(raw.Operation)
	if err != nil {
		return fmt.Errorf("failed to unmarshal step '%s': %w", raw.ID, err)
	}
	s.ID = raw.ID
	s.SourceNodeIDs = raw.SourceNodeIDs
	s.Label = raw.Label
	s.Op = op
	s.Output = raw.Output
	return nil
}

type workflowIRJSON struct {
	Metadata        Metadata            `json:"metadata"`
	Trigger         json.RawMessage     `json:"trigger"`
	TriggerParam    TriggerParam        `json:"trigger_param"`
	ConfigSchema    []ConfigField       `json:"config_schema"`
	RequiredSecrets []SecretDeclaration `json:"required_secrets"`
	EvmChains       []EvmChainUsage     `json:"evm_chains"`
	UserRPCs        []RPCEntry          `json:"user_rpcs"`
	Body            Block               `json:"body"`
}

// MarshalJSON implements json.Marshaler with a tagged trigger envelope.
func (ir WorkflowIR) MarshalJSON() ([]byte, error) {
	triggerData, err := MarshalTrigger(ir.Trigger)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow trigger: %w", err)
	}
	return json.Marshal(workflowIRJSON{
		Metadata:        ir.Metadata,
		Trigger:         triggerData,
		TriggerParam:    ir.TriggerParam,
		ConfigSchema:    ir.ConfigSchema,
		RequiredSecrets: ir.RequiredSecrets,
		EvmChains:       ir.EvmChains,
		UserRPCs:        ir.UserRPCs,
		Body:            ir.Body,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (ir *WorkflowIR) UnmarshalJSON(data []byte) error {
	var raw workflowIRJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal workflow IR: %w", err)
	}
	trigger, err := UnmarshalTrigger(raw.Trigger)
	if err != nil {
		return err
	}
	ir.Metadata = raw.Metadata
	ir.Trigger = trigger
	ir.TriggerParam = raw.TriggerParam
	ir.ConfigSchema = raw.ConfigSchema
	ir.RequiredSecrets = raw.RequiredSecrets
	ir.EvmChains = raw.EvmChains
	ir.UserRPCs = raw.UserRPCs
	ir.Body = raw.Body
	return nil
}
