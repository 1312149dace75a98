// Package voice implements the spoken-search pipeline: transcribe audio,
// interpret the transcript into a search intent, embed the extracted value
// and look up similar ideas in the vector index.
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/colaunch/colaunch-server/internal/ai"
)

// Intent commands. Anything the model cannot map to a search comes back
// as CommandOther and the caller falls back to the manual search bar.
const (
	CommandSearch = "search"
	CommandOther  = "other"
)

// Parameter types an intent can carry.
const (
	TypeName     = "name"
	TypeLocation = "location"
	TypeCategory = "category"
)

// Intent is the structured reading of a spoken request.
type Intent struct {
	Command    string `json:"command"`
	Parameters struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"parameters"`
}

const interpretInstruction = `You convert a spoken request from a startup discovery app into JSON.
Respond with only a JSON object of the form:
{"command": "search" | "other", "parameters": {"type": "name" | "location" | "category", "value": string}}

Rules:
1. If the user asks to find or search companies by name or keyword, use type "name" and put the keyword in value.
   Example: "find companies about solar panels" -> {"command": "search", "parameters": {"type": "name", "value": "solar panels"}}
2. If the user asks for companies in a place, use type "location" and put the place in value.
   Example: "show me startups in Singapore" -> {"command": "search", "parameters": {"type": "location", "value": "Singapore"}}
3. If the user names an industry, use type "category" and pick the closest value from: software, healthcare, fintech, ecommerce, ai, sustainability.
   Example: "I want to see fintech ideas" -> {"command": "search", "parameters": {"type": "category", "value": "fintech"}}

If the request is not a search, respond {"command": "other", "parameters": {"type": "name", "value": ""}}.`

// Chatter is the chat-completion surface of the AI client.
type Chatter interface {
	ChatCompletion(ctx context.Context, model string, messages []ai.Message, maxTokens int, temperature float64) (string, error)
}

// Interpreter turns raw transcripts into Intents with a fixed instruction
// prompt at temperature 0.
type Interpreter struct {
	chat  Chatter
	model string
}

func NewInterpreter(chat Chatter, model string) *Interpreter {
	return &Interpreter{chat: chat, model: model}
}

func (i *Interpreter) Interpret(ctx context.Context, transcript string) (*Intent, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, fmt.Errorf("voice: empty transcript")
	}

	messages := []ai.Message{
		{Role: "system", Content: interpretInstruction},
		{Role: "user", Content: transcript},
	}

	out, err := i.chat.ChatCompletion(ctx, i.model, messages, 150, 0)
	if err != nil {
		return nil, fmt.Errorf("voice: interpreting transcript: %w", err)
	}

	intent := &Intent{}
	if err := json.Unmarshal([]byte(stripFence(out)), intent); err != nil {
		return nil, fmt.Errorf("voice: parsing intent %q: %w", out, err)
	}
	if intent.Command != CommandSearch && intent.Command != CommandOther {
		return nil, fmt.Errorf("voice: unexpected intent command %q", intent.Command)
	}
	if intent.Command == CommandSearch {
		switch intent.Parameters.Type {
		case TypeName, TypeLocation, TypeCategory:
		default:
			return nil, fmt.Errorf("voice: unexpected intent type %q", intent.Parameters.Type)
		}
		if strings.TrimSpace(intent.Parameters.Value) == "" {
			return nil, fmt.Errorf("voice: search intent with empty value")
		}
	}
	return intent, nil
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
