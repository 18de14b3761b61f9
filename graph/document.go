package graph

import "encoding/json"

// NodeKind is the discriminated kind tag of a visual workflow node.
type NodeKind string

// Trigger kinds. Exactly one trigger node exists per workflow.
const (
	KindCronTrigger   NodeKind = "cronTrigger"
	KindHTTPTrigger   NodeKind = "httpTrigger"
	KindEvmLogTrigger NodeKind = "evmLogTrigger"
)

// Action kinds.
const (
	KindHTTPRequest NodeKind = "httpRequest"
	KindEvmRead     NodeKind = "evmRead"
	KindEvmWrite    NodeKind = "evmWrite"
	KindGetSecret   NodeKind = "getSecret"
)

// Transform kinds.
const (
	KindCode      NodeKind = "codeNode"
	KindJSONParse NodeKind = "jsonParse"
	KindABIEncode NodeKind = "abiEncode"
	KindABIDecode NodeKind = "abiDecode"
)

// Control-flow kinds.
const (
	KindIf     NodeKind = "if"
	KindFilter NodeKind = "filter"
	KindMerge  NodeKind = "merge"
)

// AI and output kinds.
const (
	KindAI           NodeKind = "ai"
	KindReturn       NodeKind = "return"
	KindLog          NodeKind = "log"
	KindError        NodeKind = "error"
	KindStopAndError NodeKind = "stopAndError"
)

// Convenience kinds. These never reach primitive lowering directly; an
// Expander substitutes primitive steps for them before the structurer runs.
const (
	KindMintToken     NodeKind = "mintToken"
	KindBurnToken     NodeKind = "burnToken"
	KindTransferToken NodeKind = "transferToken"
	KindCheckKyc      NodeKind = "checkKyc"
	KindCheckBalance  NodeKind = "checkBalance"
)

// Document is the serializable workflow produced by the visual editor.
type Document struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	Version      string       `json:"version" yaml:"version"`
	Nodes        []Node       `json:"nodes" yaml:"nodes"`
	Edges        []Edge       `json:"edges" yaml:"edges"`
	GlobalConfig GlobalConfig `json:"globalConfig" yaml:"globalConfig"`
	CreatedAt    string       `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt    string       `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// GlobalConfig carries workflow-wide resources declared in the editor.
type GlobalConfig struct {
	IsTestnet            bool              `json:"isTestnet" yaml:"isTestnet"`
	DefaultChainSelector string            `json:"defaultChainSelector,omitempty" yaml:"defaultChainSelector,omitempty"`
	Secrets              []SecretReference `json:"secrets,omitempty" yaml:"secrets,omitempty"`
	RPCs                 []RPCEntry        `json:"rpcs,omitempty" yaml:"rpcs,omitempty"`
}

// SecretReference declares a secret the workflow may fetch at runtime.
type SecretReference struct {
	Name        string `json:"name" yaml:"name"`
	EnvVariable string `json:"envVariable" yaml:"envVariable"`
}

// RPCEntry is a user-supplied RPC endpoint for a specific chain.
type RPCEntry struct {
	ChainName string `json:"chainName" yaml:"chainName"`
	URL       string `json:"url" yaml:"url"`
}

// Node is a single visual node: a kind tag plus kind-specific configuration.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Kind     NodeKind `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

// Position is the node's location on the visual canvas. Carried through
// serialization but ignored by the compiler.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeData wraps the node label, kind-specific config, and shared settings.
type NodeData struct {
	Label    string        `json:"label" yaml:"label"`
	Config   NodeConfig    `json:"config" yaml:"config"`
	Settings *NodeSettings `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// NodeSettings are behaviors shared by every node kind.
type NodeSettings struct {
	// Log, when set, appends a log step right after the node's own step.
	Log *LogSetting `json:"log,omitempty" yaml:"log,omitempty"`
	// ReturnExpression overrides the value used by the synthesized return
	// step when this node is a non-terminal leaf.
	ReturnExpression string `json:"returnExpression,omitempty" yaml:"returnExpression,omitempty"`
	Notes            string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// LogSetting configures the per-node trailing log step.
type LogSetting struct {
	Level           string `json:"level" yaml:"level"`
	MessageTemplate string `json:"messageTemplate" yaml:"messageTemplate"`
}

// NodeConfig contains kind-specific configuration. Only the fields for the
// node's own kind are populated; the rest stay at their zero values.
type NodeConfig struct {
	// Cron trigger
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty"`

	// HTTP trigger
	HTTPMethod          string   `json:"httpMethod,omitempty" yaml:"httpMethod,omitempty"`
	Path                string   `json:"path,omitempty" yaml:"path,omitempty"`
	AuthorizedAddresses []string `json:"authorizedAddresses,omitempty" yaml:"authorizedAddresses,omitempty"`

	// EVM log trigger
	ChainSelectorName string          `json:"chainSelectorName,omitempty" yaml:"chainSelectorName,omitempty"`
	ContractAddresses []string        `json:"contractAddresses,omitempty" yaml:"contractAddresses,omitempty"`
	EventSignature    string          `json:"eventSignature,omitempty" yaml:"eventSignature,omitempty"`
	EventABI          json.RawMessage `json:"eventAbi,omitempty" yaml:"eventAbi,omitempty"`
	TopicFilters      *TopicFilters   `json:"topicFilters,omitempty" yaml:"topicFilters,omitempty"`
	BlockConfirmation string          `json:"blockConfirmation,omitempty" yaml:"blockConfirmation,omitempty"`

	// HTTP request
	Method              string            `json:"method,omitempty" yaml:"method,omitempty"`
	URL                 string            `json:"url,omitempty" yaml:"url,omitempty"`
	Headers             map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	QueryParameters     map[string]string `json:"queryParameters,omitempty" yaml:"queryParameters,omitempty"`
	Body                *HTTPBodyConfig   `json:"body,omitempty" yaml:"body,omitempty"`
	Authentication      *HTTPAuthConfig   `json:"authentication,omitempty" yaml:"authentication,omitempty"`
	CacheMaxAge         int               `json:"cacheMaxAge,omitempty" yaml:"cacheMaxAge,omitempty"`
	Timeout             int               `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	ExpectedStatusCodes []int             `json:"expectedStatusCodes,omitempty" yaml:"expectedStatusCodes,omitempty"`
	ResponseFormat      string            `json:"responseFormat,omitempty" yaml:"responseFormat,omitempty"`

	// EVM read / write
	ContractAddress string          `json:"contractAddress,omitempty" yaml:"contractAddress,omitempty"`
	ABI             json.RawMessage `json:"abi,omitempty" yaml:"abi,omitempty"`
	FunctionName    string          `json:"functionName,omitempty" yaml:"functionName,omitempty"`
	Args            []EvmArgDef     `json:"args,omitempty" yaml:"args,omitempty"`
	FromAddress     string          `json:"fromAddress,omitempty" yaml:"fromAddress,omitempty"`
	BlockNumber     string          `json:"blockNumber,omitempty" yaml:"blockNumber,omitempty"`
	ReceiverAddress string          `json:"receiverAddress,omitempty" yaml:"receiverAddress,omitempty"`
	GasLimit        string          `json:"gasLimit,omitempty" yaml:"gasLimit,omitempty"`
	DataMapping     []EvmArgDef     `json:"dataMapping,omitempty" yaml:"dataMapping,omitempty"`
	Value           string          `json:"value,omitempty" yaml:"value,omitempty"`

	// Secret fetch
	SecretName string `json:"secretName,omitempty" yaml:"secretName,omitempty"`

	// Inline code
	Code           string   `json:"code,omitempty" yaml:"code,omitempty"`
	Language       string   `json:"language,omitempty" yaml:"language,omitempty"`
	ExecutionMode  string   `json:"executionMode,omitempty" yaml:"executionMode,omitempty"`
	InputVariables []string `json:"inputVariables,omitempty" yaml:"inputVariables,omitempty"`

	// JSON parse
	SourcePath string `json:"sourcePath,omitempty" yaml:"sourcePath,omitempty"`
	Strict     *bool  `json:"strict,omitempty" yaml:"strict,omitempty"`

	// ABI encode / decode
	ABIParams     json.RawMessage  `json:"abiParams,omitempty" yaml:"abiParams,omitempty"`
	ParamMappings []ABIDataMapping `json:"paramMappings,omitempty" yaml:"paramMappings,omitempty"`
	OutputNames   []string         `json:"outputNames,omitempty" yaml:"outputNames,omitempty"`

	// If / filter
	Conditions  []ConditionDef `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	CombineWith string         `json:"combineWith,omitempty" yaml:"combineWith,omitempty"`

	// AI call
	Provider     string   `json:"provider,omitempty" yaml:"provider,omitempty"`
	BaseURL      string   `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	Model        string   `json:"model,omitempty" yaml:"model,omitempty"`
	APIKeySecret string   `json:"apiKeySecret,omitempty" yaml:"apiKeySecret,omitempty"`
	SystemPrompt string   `json:"systemPrompt,omitempty" yaml:"systemPrompt,omitempty"`
	UserPrompt   string   `json:"userPrompt,omitempty" yaml:"userPrompt,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens    int      `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`

	// Return / log / error
	ReturnExpression string `json:"returnExpression,omitempty" yaml:"returnExpression,omitempty"`
	Level            string `json:"level,omitempty" yaml:"level,omitempty"`
	MessageTemplate  string `json:"messageTemplate,omitempty" yaml:"messageTemplate,omitempty"`
	ErrorMessage     string `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
}

// HTTPBodyConfig is the request body of an httpRequest node.
type HTTPBodyConfig struct {
	ContentType string `json:"contentType" yaml:"contentType"`
	Data        string `json:"data" yaml:"data"`
}

// HTTPAuthConfig configures httpRequest authentication. Only bearer-token
// auth is supported; the token value is resolved from a declared secret.
type HTTPAuthConfig struct {
	Type        string `json:"type" yaml:"type"`
	TokenSecret string `json:"tokenSecret,omitempty" yaml:"tokenSecret,omitempty"`
}

// TopicFilters restrict an EVM log trigger to matching indexed topics.
type TopicFilters struct {
	Topic1 []string `json:"topic1,omitempty" yaml:"topic1,omitempty"`
	Topic2 []string `json:"topic2,omitempty" yaml:"topic2,omitempty"`
	Topic3 []string `json:"topic3,omitempty" yaml:"topic3,omitempty"`
}

// EvmArgDef is one typed argument for an EVM read or write.
type EvmArgDef struct {
	ArgType string `json:"type" yaml:"type"`
	Value   string `json:"value" yaml:"value"`
	ABIType string `json:"abiType" yaml:"abiType"`
}

// ABIDataMapping maps an ABI parameter name to a source reference string.
type ABIDataMapping struct {
	ParamName string `json:"paramName" yaml:"paramName"`
	Source    string `json:"source" yaml:"source"`
}

// ConditionDef is one comparison in an if or filter node.
type ConditionDef struct {
	Field    string `json:"field" yaml:"field"`
	Operator string `json:"operator" yaml:"operator"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Edge is a directed connection between two nodes. SourceHandle
// disambiguates an if node's two outgoing edges ("true" / "false").
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// IsTrigger reports whether the node is a workflow trigger.
func (n *Node) IsTrigger() bool {
	switch n.Kind {
	case KindCronTrigger, KindHTTPTrigger, KindEvmLogTrigger:
		return true
	}
	return false
}

// IsExplicitTerminal reports whether the node always ends execution on its path.
func (n *Node) IsExplicitTerminal() bool {
	switch n.Kind {
	case KindReturn, KindError, KindStopAndError:
		return true
	}
	return false
}

// IsConvenience reports whether the node is a macro-like kind that must be
// expanded into primitive steps before lowering.
func (n *Node) IsConvenience() bool {
	switch n.Kind {
	case KindMintToken, KindBurnToken, KindTransferToken, KindCheckKyc, KindCheckBalance:
		return true
	}
	return false
}

// Settings returns the node settings, never nil.
func (n *Node) Settings() NodeSettings {
	if n.Data.Settings == nil {
		return NodeSettings{}
	}
	return *n.Data.Settings
}
