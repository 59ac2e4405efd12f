// Package plan converts compiled scenario steps into the execution-plan
// document consumed by the external engine.
package plan

type StepKind string

const (
	StepRequest StepKind = "request"
	StepWait    StepKind = "wait"
	StepRaw     StepKind = "raw"
)

// WaitTestcase is the engine-side testcase that sleeps for variables.sleep_time seconds.
const WaitTestcase = "builtin/wait"

type Plan struct {
	Config    Config `json:"config" yaml:"config"`
	TestSteps []Step `json:"teststeps" yaml:"teststeps"`
}

type Config struct {
	Name      string         `json:"name" yaml:"name"`
	Variables map[string]any `json:"variables" yaml:"variables"`
	BaseURL   string         `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// Step is a tagged union over Kind: request steps carry Request, wait steps
// carry Variables and Testcase, raw steps carry Type and Raw.
type Step struct {
	Kind      StepKind          `json:"-" yaml:"-"`
	Name      string            `json:"name" yaml:"name"`
	Request   *RequestSpec      `json:"request,omitempty" yaml:"request,omitempty"`
	Variables map[string]any    `json:"variables,omitempty" yaml:"variables,omitempty"`
	Testcase  string            `json:"testcase,omitempty" yaml:"testcase,omitempty"`
	Type      string            `json:"type,omitempty" yaml:"type,omitempty"`
	Raw       map[string]any    `json:"config,omitempty" yaml:"config,omitempty"`
	Extract   map[string]string `json:"extract,omitempty" yaml:"extract,omitempty"`
	Validate  []any             `json:"validate,omitempty" yaml:"validate,omitempty"`
}

type RequestSpec struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	JSON    any               `json:"json,omitempty" yaml:"json,omitempty"`
}

// inferKind restores the union tag of a decoded step.
func (s Step) inferKind() StepKind {
	switch {
	case s.Request != nil:
		return StepRequest
	case s.Testcase == WaitTestcase:
		return StepWait
	default:
		return StepRaw
	}
}
