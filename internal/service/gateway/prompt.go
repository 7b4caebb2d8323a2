package gateway

import (
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/z-tavern/webchat/internal/model/persona"
)

// Mode selects the conversation endpoint and payload shape.
type Mode int

const (
	ModeChat Mode = iota
	ModeDataAnalysis
)

func (m Mode) String() string {
	switch m {
	case ModeDataAnalysis:
		return "data-analysis"
	default:
		return "chat"
	}
}

// ModeFor derives the mode from the configured agent type.
func ModeFor(agentType string) Mode {
	if agentType == persona.DataAnalystID {
		return ModeDataAnalysis
	}
	return ModeChat
}

// Context is the dialogue history echoed to the backend on every turn.
type Context []*schema.Message

// Clone returns a deep copy so callers never share history with the gateway.
func (c Context) Clone() Context {
	out := make(Context, 0, len(c))
	for _, item := range c {
		if item == nil {
			continue
		}
		copied := *item
		out = append(out, &copied)
	}
	return out
}

// Prompt is one of ChatPrompt or AnalysisPrompt.
type Prompt interface {
	endpoint() string
	payload() any
}

// ChatPrompt is sent to /ask-question.
type ChatPrompt struct {
	Text        string
	CharacterID string
	Ruleset     string
	Context     Context
}

type askQuestionRequest struct {
	QuestionOrPrompt string  `json:"question_or_prompt"`
	CharacterName    string  `json:"character_name"`
	Context          Context `json:"context"`
	Ruleset          string  `json:"ruleset,omitempty"`
}

func (p ChatPrompt) endpoint() string { return "/ask-question" }

func (p ChatPrompt) payload() any {
	return askQuestionRequest{
		QuestionOrPrompt: p.Text,
		CharacterName:    p.CharacterID,
		Context:          p.Context.Clone(),
		Ruleset:          p.Ruleset,
	}
}

// AnalysisPrompt is sent to /analyze-data.
type AnalysisPrompt struct {
	Text    string
	FileID  string
	IsCSV   bool
	Context Context
	Query   string
}

type analyzeDataRequest struct {
	QuestionOrPrompt string  `json:"question_or_prompt"`
	FileID           string  `json:"file_id,omitempty"`
	IsCSV            bool    `json:"is_csv"`
	Context          Context `json:"context"`
	Query            string  `json:"query,omitempty"`
}

func (p AnalysisPrompt) endpoint() string { return "/analyze-data" }

func (p AnalysisPrompt) payload() any {
	return analyzeDataRequest{
		QuestionOrPrompt: p.Text,
		FileID:           p.FileID,
		IsCSV:            p.IsCSV,
		Context:          p.Context.Clone(),
		Query:            p.Query,
	}
}

// GeneratorConfig describes the model that produced a reply.
type GeneratorConfig struct {
	BaseURL     string `json:"base_url"`
	AIModelName string `json:"ai_model_name"`
}

// Reply is the backend answer to a prompt.
type Reply struct {
	Text    string
	Context Context
	Config  GeneratorConfig
}

type aiResponse struct {
	Response       string          `json:"response"`
	UpdatedContext Context         `json:"updated_context"`
	Config         GeneratorConfig `json:"config"`
}
