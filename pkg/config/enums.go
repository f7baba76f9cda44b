package config

// AgentRole identifies one of the three LLM-backed roles Eidetic wires
// into every project: the Designer authors scripts, the Analyst curates
// propositions, the Synthesizer writes the final report.
type AgentRole string

const (
	RoleDesigner    AgentRole = "designer"
	RoleAnalyst     AgentRole = "analyst"
	RoleSynthesizer AgentRole = "synthesizer"
)

// IsValid reports whether the role is one Eidetic knows how to wire.
func (r AgentRole) IsValid() bool {
	switch r {
	case RoleDesigner, RoleAnalyst, RoleSynthesizer:
		return true
	default:
		return false
	}
}

// LLMBackend selects which provider SDK an agent's Oracle calls use.
type LLMBackend string

const (
	LLMBackendAnthropic LLMBackend = "anthropic"
	LLMBackendOpenAI    LLMBackend = "openai"
)

// IsValid reports whether the backend is one pkg/llmoracle implements.
func (b LLMBackend) IsValid() bool {
	return b == LLMBackendAnthropic || b == LLMBackendOpenAI
}
