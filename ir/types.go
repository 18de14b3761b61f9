package ir

// WorkflowIR is the complete intermediate representation of a compiled
// workflow. Produced by the lowering pass, consumed by an emitter.
type WorkflowIR struct {
	Metadata Metadata `json:"metadata"`
	// Exactly one trigger per workflow.
	Trigger Trigger `json:"-"`
	// TriggerParam is the shape of the payload the runtime hands the workflow.
	TriggerParam TriggerParam `json:"trigger_param"`
	// ConfigSchema lists the fields of the workflow's runtime configuration.
	ConfigSchema []ConfigField `json:"config_schema"`
	// RequiredSecrets must be declared before the workflow can run.
	RequiredSecrets []SecretDeclaration `json:"required_secrets"`
	// EvmChains are the distinct chains used. Each gets one client binding;
	// multiple steps on the same chain share it.
	EvmChains []EvmChainUsage `json:"evm_chains"`
	// UserRPCs are user-supplied RPC endpoints from the document.
	UserRPCs []RPCEntry `json:"user_rpcs"`
	// Body is the execution plan.
	Body Block `json:"body"`
}

// Metadata carries document identity through to the emitter.
type Metadata struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	Version              string `json:"version"`
	IsTestnet            bool   `json:"is_testnet"`
	DefaultChainSelector string `json:"default_chain_selector,omitempty"`
}

// FieldType is the primitive type of a config schema field.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	// FieldRaw stores a raw schema expression for nested shapes.
	FieldRaw FieldType = "raw"
)

// ConfigField is one field of the generated workflow configuration schema.
type ConfigField struct {
	Name         string    `json:"name"`
	Type         FieldType `json:"type"`
	RawSchema    string    `json:"raw_schema,omitempty"`
	DefaultValue string    `json:"default_value,omitempty"`
	Description  string    `json:"description,omitempty"`
}

// SecretDeclaration is a secret the runtime must provide.
type SecretDeclaration struct {
	// Name is the logical name used by get-secret calls.
	Name string `json:"name"`
	// EnvVariable is the environment variable backing the secret.
	EnvVariable string `json:"env_variable"`
}

// EvmChainUsage is a distinct chain that needs a client instantiation.
type EvmChainUsage struct {
	ChainSelectorName string `json:"chain_selector_name"`
	// BindingName is the generated client variable, e.g. `evmClient_ethereum`.
	BindingName string `json:"binding_name"`
	// UsedForTrigger marks the chain backing the log trigger.
	UsedForTrigger bool `json:"used_for_trigger"`
}

// RPCEntry is a user-defined RPC endpoint for a specific chain.
type RPCEntry struct {
	ChainName string `json:"chain_name"`
	URL       string `json:"url"`
}

// TriggerParam is the shape of the trigger payload parameter.
type TriggerParam string

const (
	ParamNone TriggerParam = "none"
	ParamCron TriggerParam = "cron"
	ParamHTTP TriggerParam = "http"
	// ParamEvmLog carries topics, data, and the emitting address.
	ParamEvmLog TriggerParam = "evmLog"
)

// Trigger is the closed set of trigger definitions. Exactly one of
// CronTrigger, HTTPTrigger, or EvmLogTrigger.
type Trigger interface {
	TriggerType() string
}

// Trigger type discriminators used in the JSON envelope.
const (
	TriggerCron   = "Cron"
	TriggerHTTP   = "Http"
	TriggerEvmLog = "EvmLog"
)

// CronTrigger fires on a schedule.
type CronTrigger struct {
	Schedule ValueExpr `json:"schedule"`
	Timezone string    `json:"timezone,omitempty"`
}

func (*CronTrigger) TriggerType() string { return TriggerCron }

// HTTPTrigger fires on an inbound request.
type HTTPTrigger struct {
	Path    ValueExpr `json:"path"`
	Methods []string  `json:"methods"`
	// AuthorizedKeys is empty for simulation and testnets.
	AuthorizedKeys []string `json:"authorized_keys,omitempty"`
}

func (*HTTPTrigger) TriggerType() string { return TriggerHTTP }

// EvmLogTrigger fires when a matching log is emitted on chain.
type EvmLogTrigger struct {
	// EvmClientBinding references EvmChainUsage.BindingName.
	EvmClientBinding  string        `json:"evm_client_binding"`
	ContractAddresses []ValueExpr   `json:"contract_addresses"`
	EventSignature    string        `json:"event_signature"`
	EventABIJSON      string        `json:"event_abi_json"`
	TopicFilters      []TopicFilter `json:"topic_filters,omitempty"`
	Confidence        string        `json:"confidence,omitempty"`
}

func (*EvmLogTrigger) TriggerType() string { return TriggerEvmLog }

// TopicFilter restricts a log trigger to specific indexed topic values.
type TopicFilter struct {
	Index  uint8    `json:"index"`
	Values []string `json:"values"`
}

// Block is an ordered sequence of steps. It appears as the top-level body
// and as the two arms of a Branch. Steps execute top to bottom.
type Block struct {
	Steps []Step `json:"steps"`
}

// Step is a single step in the execution plan.
type Step struct {
	// ID is globally unique. Matches the source node ID, or
	// `{nodeId}___{sub}` for steps synthesized during lowering.
	ID string `json:"id"`
	// SourceNodeIDs are the visual node IDs this step was derived from.
	SourceNodeIDs []string `json:"source_node_ids"`
	// Label is the human-readable node label, for emitter comments.
	Label string `json:"label"`
	Op    Operation `json:"-"`
	// Output is nil for steps that produce no value (Log, Return, ErrorThrow).
	Output *OutputBinding `json:"output,omitempty"`
}

// OutputBinding defines what a step exports into the lexical scope.
//
// Rules:
//   - each step produces at most one binding
//   - bindings can only be referenced by later steps
//   - bindings inside a branch arm are not visible outside it
//   - a Merge bridges scope: its binding lands in the parent block
type OutputBinding struct {
	// VariableName follows the convention `step_{sanitized_id}`.
	VariableName string `json:"variable_name"`
	// TypeHint is the emitter-facing type annotation for the binding.
	TypeHint string `json:"type_hint"`
	// DestructureFields, when set, tells the emitter to destructure the
	// value into the named fields instead of binding it whole.
	DestructureFields []string `json:"destructure_fields,omitempty"`
}

// Operation is the closed set of things a step can do. Each implementation
// maps to one emitter pattern.
type Operation interface {
	OpType() string
}

// Operation type discriminators used in the JSON envelope.
const (
	OpHTTPRequest = "HttpRequest"
	OpEvmRead     = "EvmRead"
	OpEvmWrite    = "EvmWrite"
	OpGetSecret   = "GetSecret"
	OpCode        = "CodeNode"
	OpJSONParse   = "JsonParse"
	OpABIEncode   = "AbiEncode"
	OpABIDecode   = "AbiDecode"
	OpBranch      = "Branch"
	OpFilter      = "Filter"
	OpMerge       = "Merge"
	OpAICall      = "AiCall"
	OpLog         = "Log"
	OpErrorThrow  = "ErrorThrow"
	OpReturn      = "Return"
)

// KeyValue is an ordered header or query parameter.
type KeyValue struct {
	Key   string    `json:"key"`
	Value ValueExpr `json:"value"`
}

// HTTPMethod is an HTTP request method.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
	MethodPatch  HTTPMethod = "PATCH"
	MethodHead   HTTPMethod = "HEAD"
)

// HTTPContentType is the encoding of an outbound request body.
type HTTPContentType string

const (
	ContentJSON           HTTPContentType = "json"
	ContentFormURLEncoded HTTPContentType = "formUrlEncoded"
	ContentRaw            HTTPContentType = "raw"
)

// HTTPBody is an outbound request body.
type HTTPBody struct {
	ContentType HTTPContentType `json:"content_type"`
	Data        ValueExpr       `json:"data"`
}

// HTTPAuthKind discriminates the authentication schemes.
type HTTPAuthKind string

const (
	AuthHeader      HTTPAuthKind = "header"
	AuthBasic       HTTPAuthKind = "basic"
	AuthBearerToken HTTPAuthKind = "bearerToken"
	AuthQuery       HTTPAuthKind = "query"
)

// HTTPAuth configures request authentication. Every referenced secret must
// appear in WorkflowIR.RequiredSecrets.
type HTTPAuth struct {
	Kind HTTPAuthKind `json:"type"`
	// Header auth: HeaderName + ValueSecret. Query auth: ParamName + ValueSecret.
	HeaderName  string `json:"header_name,omitempty"`
	ParamName   string `json:"param_name,omitempty"`
	ValueSecret string `json:"value_secret,omitempty"`
	// Basic auth.
	UsernameSecret string `json:"username_secret,omitempty"`
	PasswordSecret string `json:"password_secret,omitempty"`
	// Bearer token auth.
	TokenSecret string `json:"token_secret,omitempty"`
}

// SecretNames returns the secrets this auth scheme reads.
func (a *HTTPAuth) SecretNames() []string {
	switch a.Kind {
	case AuthHeader, AuthQuery:
		return []string{a.ValueSecret}
	case AuthBasic:
		return []string{a.UsernameSecret, a.PasswordSecret}
	case AuthBearerToken:
		return []string{a.TokenSecret}
	}
	return nil
}

// HTTPResponseFormat is how the response payload is decoded.
type HTTPResponseFormat string

const (
	ResponseJSON   HTTPResponseFormat = "json"
	ResponseText   HTTPResponseFormat = "text"
	ResponseBinary HTTPResponseFormat = "binary"
)

// ConsensusKind discriminates observation aggregation strategies.
type ConsensusKind string

const (
	ConsensusIdentical      ConsensusKind = "identical"
	ConsensusMedianByFields ConsensusKind = "medianByFields"
	ConsensusCustom         ConsensusKind = "custom"
)

// Consensus selects how independent observations of an external call are
// aggregated into one result.
type Consensus struct {
	Kind   ConsensusKind `json:"kind"`
	Fields []string      `json:"fields,omitempty"`
	Expr   string        `json:"expr,omitempty"`
}

// HTTPRequestOp performs an outbound HTTP call through the runtime's
// http capability.
type HTTPRequestOp struct {
	Method              HTTPMethod         `json:"method"`
	URL                 ValueExpr          `json:"url"`
	Headers             []KeyValue         `json:"headers,omitempty"`
	QueryParams         []KeyValue         `json:"query_params,omitempty"`
	Body                *HTTPBody          `json:"body,omitempty"`
	Authentication      *HTTPAuth          `json:"authentication,omitempty"`
	CacheMaxAgeSeconds  uint32             `json:"cache_max_age_seconds,omitempty"`
	TimeoutMs           uint32             `json:"timeout_ms,omitempty"`
	ExpectedStatusCodes []uint16           `json:"expected_status_codes,omitempty"`
	ResponseFormat      HTTPResponseFormat `json:"response_format"`
	Consensus           Consensus          `json:"consensus"`
}

func (*HTTPRequestOp) OpType() string { return OpHTTPRequest }

// EvmArg is one positional argument of a contract call.
type EvmArg struct {
	ABIType string    `json:"abi_type"`
	Value   ValueExpr `json:"value"`
}

// EvmReadOp reads contract state without a transaction.
type EvmReadOp struct {
	// EvmClientBinding references EvmChainUsage.BindingName.
	EvmClientBinding string     `json:"evm_client_binding"`
	ContractAddress  ValueExpr  `json:"contract_address"`
	FunctionName     string     `json:"function_name"`
	ABIJSON          string     `json:"abi_json"`
	Args             []EvmArg   `json:"args,omitempty"`
	FromAddress      *ValueExpr `json:"from_address,omitempty"`
	BlockNumber      *ValueExpr `json:"block_number,omitempty"`
}

func (*EvmReadOp) OpType() string { return OpEvmRead }

// EvmWriteOp submits a transaction with pre-encoded calldata.
type EvmWriteOp struct {
	EvmClientBinding string     `json:"evm_client_binding"`
	ReceiverAddress  ValueExpr  `json:"receiver_address"`
	GasLimit         ValueExpr  `json:"gas_limit"`
	EncodedData      ValueExpr  `json:"encoded_data"`
	ValueWei         *ValueExpr `json:"value_wei,omitempty"`
}

func (*EvmWriteOp) OpType() string { return OpEvmWrite }

// GetSecretOp fetches a declared secret at runtime.
type GetSecretOp struct {
	SecretName string `json:"secret_name"`
}

func (*GetSecretOp) OpType() string { return OpGetSecret }

// CodeExecutionMode selects how user code runs across trigger items.
type CodeExecutionMode string

const (
	RunOnceForAll  CodeExecutionMode = "runOnceForAll"
	RunOnceForEach CodeExecutionMode = "runOnceForEach"
)

// CodeInputBinding injects a scope value under a user-chosen name.
type CodeInputBinding struct {
	VariableName string    `json:"variable_name"`
	Value        ValueExpr `json:"value"`
}

// CodeOp runs a user-supplied code snippet with injected inputs.
type CodeOp struct {
	Code          string             `json:"code"`
	InputBindings []CodeInputBinding `json:"input_bindings,omitempty"`
	ExecutionMode CodeExecutionMode  `json:"execution_mode"`
	TimeoutMs     uint32             `json:"timeout_ms,omitempty"`
}

func (*CodeOp) OpType() string { return OpCode }

// JSONParseOp decodes a JSON payload, optionally extracting a sub-value.
type JSONParseOp struct {
	Input ValueExpr `json:"input"`
	// SourcePath is an optional dotted path to extract after parsing.
	SourcePath string `json:"source_path,omitempty"`
	Strict     bool   `json:"strict"`
}

func (*JSONParseOp) OpType() string { return OpJSONParse }

// ABIDataMapping maps one ABI parameter to its value.
type ABIDataMapping struct {
	ParamName string    `json:"param_name"`
	Value     ValueExpr `json:"value"`
}

// ABIEncodeOp encodes function calldata or standalone parameters.
type ABIEncodeOp struct {
	// FunctionName is empty for standalone parameter encoding.
	FunctionName string           `json:"function_name,omitempty"`
	ABIJSON      string           `json:"abi_json"`
	DataMappings []ABIDataMapping `json:"data_mappings,omitempty"`
}

func (*ABIEncodeOp) OpType() string { return OpABIEncode }

// ABIDecodeOp decodes ABI-encoded bytes into named outputs.
type ABIDecodeOp struct {
	Input       ValueExpr `json:"input"`
	ABIJSON     string    `json:"abi_json"`
	OutputNames []string  `json:"output_names,omitempty"`
}

func (*ABIDecodeOp) OpType() string { return OpABIDecode }

// CompareOp is a condition comparison operator.
type CompareOp string

const (
	OpEquals      CompareOp = "equals"
	OpNotEquals   CompareOp = "notEquals"
	OpGt          CompareOp = "gt"
	OpGte         CompareOp = "gte"
	OpLt          CompareOp = "lt"
	OpLte         CompareOp = "lte"
	OpContains    CompareOp = "contains"
	OpNotContains CompareOp = "notContains"
	OpStartsWith  CompareOp = "startsWith"
	OpEndsWith    CompareOp = "endsWith"
	OpRegex       CompareOp = "regex"
	OpNotRegex    CompareOp = "notRegex"
	OpExists      CompareOp = "exists"
	OpNotExists   CompareOp = "notExists"
	OpIsEmpty     CompareOp = "isEmpty"
	OpIsNotEmpty  CompareOp = "isNotEmpty"
)

// IsUnary reports whether the operator takes no right-hand value.
func (op CompareOp) IsUnary() bool {
	switch op {
	case OpExists, OpNotExists, OpIsEmpty, OpIsNotEmpty:
		return true
	}
	return false
}

// Combinator joins multiple conditions.
type Combinator string

const (
	CombineAnd Combinator = "and"
	CombineOr  Combinator = "or"
)

// Condition is one comparison inside a Branch or Filter.
type Condition struct {
	// Field is the left-hand side: the value under test.
	Field    ValueExpr `json:"field"`
	Operator CompareOp `json:"operator"`
	// Value is nil for unary operators.
	Value *ValueExpr `json:"value,omitempty"`
}

// BranchOp is a two-way conditional. The arms are nested blocks.
type BranchOp struct {
	Conditions  []Condition `json:"conditions"`
	CombineWith Combinator  `json:"combine_with"`
	TrueBranch  Block       `json:"true_branch"`
	FalseBranch Block       `json:"false_branch"`
	// ReconvergeAt is the ID of the Merge step that reconverges the arms.
	// Empty when both arms terminate independently.
	ReconvergeAt string `json:"reconverge_at,omitempty"`
}

func (*BranchOp) OpType() string { return OpBranch }

// FilterNonMatchKind discriminates non-match behaviors.
type FilterNonMatchKind string

const (
	NonMatchEarlyReturn FilterNonMatchKind = "earlyReturn"
	NonMatchSkip        FilterNonMatchKind = "skip"
)

// FilterNonMatch is what happens when a filter's conditions do not hold.
type FilterNonMatch struct {
	Kind    FilterNonMatchKind `json:"kind"`
	Message string             `json:"message,omitempty"`
}

// FilterOp is a guard clause. It does not fork: execution either continues
// or follows the non-match behavior.
type FilterOp struct {
	Conditions  []Condition    `json:"conditions"`
	CombineWith Combinator     `json:"combine_with"`
	NonMatch    FilterNonMatch `json:"non_match"`
}

func (*FilterOp) OpType() string { return OpFilter }

// MergeStrategyKind discriminates merge strategies.
type MergeStrategyKind string

const (
	MergePassThrough MergeStrategyKind = "passThrough"
	MergeAppend      MergeStrategyKind = "append"
	MergeCustom      MergeStrategyKind = "custom"
)

// MergeStrategy selects how arm results combine at a reconvergence point.
type MergeStrategy struct {
	Kind MergeStrategyKind `json:"kind"`
	Expr string            `json:"expr,omitempty"`
}

// MergeInput is one named value flowing into a merge.
type MergeInput struct {
	HandleName string    `json:"handle_name"`
	Value      ValueExpr `json:"value"`
}

// MergeOp is the reconvergence point after a Branch. Its output binding is
// the single value both arms converge into.
type MergeOp struct {
	// BranchStepID is the Branch this reconverges from.
	BranchStepID string        `json:"branch_step_id"`
	Strategy     MergeStrategy `json:"strategy"`
	Inputs       []MergeInput  `json:"inputs,omitempty"`
}

func (*MergeOp) OpType() string { return OpMerge }

// AIResponseFormat is how an AI response is decoded.
type AIResponseFormat string

const (
	AIResponseText AIResponseFormat = "text"
	AIResponseJSON AIResponseFormat = "json"
)

// AICallOp is an inference call. Kept separate from HTTPRequestOp so the
// emitter can apply provider-specific prompt formatting, but it consumes
// the HTTP call budget.
type AICallOp struct {
	Provider       string           `json:"provider"`
	BaseURL        ValueExpr        `json:"base_url"`
	Model          ValueExpr        `json:"model"`
	APIKeySecret   string           `json:"api_key_secret"`
	SystemPrompt   ValueExpr        `json:"system_prompt"`
	UserPrompt     ValueExpr        `json:"user_prompt"`
	Temperature    *float64         `json:"temperature,omitempty"`
	MaxTokens      uint32           `json:"max_tokens,omitempty"`
	ResponseFormat AIResponseFormat `json:"response_format"`
	Consensus      Consensus        `json:"consensus"`
}

func (*AICallOp) OpType() string { return OpAICall }

// LogLevel is the severity of a Log step.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogOp emits a runtime log line. Produces no binding.
type LogOp struct {
	Level   LogLevel  `json:"level"`
	Message ValueExpr `json:"message"`
}

func (*LogOp) OpType() string { return OpLog }

// ErrorThrowOp aborts execution with an error. Terminates its path.
type ErrorThrowOp struct {
	Message ValueExpr `json:"message"`
}

func (*ErrorThrowOp) OpType() string { return OpErrorThrow }

// ReturnOp ends execution with a result value. Terminates its path.
type ReturnOp struct {
	Expression ValueExpr `json:"expression"`
}

func (*ReturnOp) OpType() string { return OpReturn }
