// Package correction repairs speech-recognition errors in transcripts using
// conversation context. Unlike grammar correction this only targets
// recognition mistakes: homophones, near-homophones, and word-boundary
// errors (e.g. "mi amo" vs "me llamo" when the tutor asked "¿Cómo te llamas?").
package correction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"lingotutor/internal/llm"
)

// correctionPrompt focuses the model on recognition errors, not grammar.
const correctionPrompt = `You are analyzing speech-to-text output for a %s language learning conversation.
The student is at %s level and may have imperfect pronunciation.

CONVERSATION CONTEXT (recent messages):
%s

SPEECH-TO-TEXT OUTPUT (may contain recognition errors):
"%s"

Your task: Determine if the STT output makes sense in the context of the conversation.
If there are recognition errors (words that sound similar but don't fit the context), correct them.

Common STT errors to watch for:
- Homophones or near-homophones (words that sound alike)
- Mispronounced words that the recognizer interpreted literally
- Word boundaries (e.g., "mi amo" vs "me llamo")
- Missing or added articles/pronouns

IMPORTANT:
- Only correct RECOGNITION errors, not grammar mistakes (grammar is corrected separately)
- If the STT output makes sense in context, return it unchanged
- Consider what the tutor/assistant just asked to inform corrections
- Be conservative: only correct when you're confident it's a recognition error

Respond with a JSON object:
{
  "corrected_text": "the corrected transcription (or original if no recognition errors)",
  "stt_corrections": [
    {
      "original": "what STT produced",
      "corrected": "what the student likely said",
      "reason": "brief explanation of why this is a recognition error"
    }
  ],
  "confidence": 0.0-1.0
}

If no corrections are needed, return an empty stt_corrections array.`

const (
	// contextWindow is the number of recent messages included in the prompt,
	// roughly three back-and-forth exchanges.
	contextWindow = 6

	noContextPlaceholder = "(No previous conversation context)"

	// Low temperature for consistent, conservative corrections.
	correctionMaxTokens   = 512
	correctionTemperature = 0.2
)

// Turn is a single conversation message used as correction context.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request holds the inputs for one correction pass.
type Request struct {
	STTText         string
	History         []Turn
	Language        string
	DifficultyLevel string
}

// Item is one detected recognition error.
type Item struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Reason    string `json:"reason"`
}

// Result always carries a usable CorrectedText: it equals OriginalText when
// no correction applies or when anything goes wrong along the way.
type Result struct {
	OriginalText  string  `json:"original_text"`
	CorrectedText string  `json:"corrected_text"`
	Corrections   []Item  `json:"corrections"`
	Confidence    float64 `json:"confidence"`
}

// Engine corrects transcripts with an LLM. Every failure path degrades to
// returning the input unchanged; Correct never reports an error.
type Engine struct {
	gateway  llm.Gateway
	provider string
	model    string
	devMode  bool
}

func NewEngine(gw llm.Gateway, provider, model string, devMode bool) *Engine {
	return &Engine{
		gateway:  gw,
		provider: provider,
		model:    model,
		devMode:  devMode,
	}
}

// Correct runs one correction pass over raw STT output.
func (e *Engine) Correct(ctx context.Context, req Request) Result {
	if strings.TrimSpace(req.STTText) == "" {
		return identity(req.STTText)
	}

	prompt := fmt.Sprintf(correctionPrompt,
		req.Language,
		normalizeLevel(req.DifficultyLevel),
		renderContext(req.History),
		req.STTText,
	)

	resp, err := e.gateway.Chat(ctx, llm.ChatRequest{
		Provider:    e.provider,
		Model:       e.model,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:   correctionMaxTokens,
		Temperature: correctionTemperature,
	})
	if err != nil {
		slog.Error("stt correction failed", "error", err)
		return identity(req.STTText)
	}

	result := parseResponse(resp.Content, req.STTText)

	if e.devMode && len(result.Corrections) > 0 {
		slog.Info("stt correction applied",
			"original", result.OriginalText,
			"corrected", result.CorrectedText,
			"corrections", len(result.Corrections),
		)
	}

	return result
}

func identity(text string) Result {
	return Result{
		OriginalText:  text,
		CorrectedText: text,
		Corrections:   []Item{},
		Confidence:    1.0,
	}
}

// renderContext formats the last few turns as "Tutor:"/"Student:" lines in
// chronological order.
func renderContext(history []Turn) string {
	if len(history) > contextWindow {
		history = history[len(history)-contextWindow:]
	}
	if len(history) == 0 {
		return noContextPlaceholder
	}

	lines := make([]string, 0, len(history))
	for _, turn := range history {
		role := "Student"
		if turn.Role == "assistant" {
			role = "Tutor"
		}
		lines = append(lines, role+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

// normalizeLevel maps the legacy three-tier vocabulary onto CEFR bands and
// passes CEFR-style values through unchanged.
func normalizeLevel(level string) string {
	if level == "" {
		return "A1"
	}
	switch strings.ToUpper(level) {
	case "BEGINNER":
		return "A1-A2"
	case "INTERMEDIATE":
		return "B1-B2"
	case "ADVANCED":
		return "C1-C2"
	default:
		return strings.ToUpper(level)
	}
}

type modelReply struct {
	CorrectedText  *string  `json:"corrected_text"`
	STTCorrections []Item   `json:"stt_corrections"`
	Confidence     *float64 `json:"confidence"`
}

// parseResponse extracts the JSON contract from free-form model output.
// Anything short of a well-formed reply falls back to the original text.
func parseResponse(content, originalText string) Result {
	var reply modelReply
	if err := json.Unmarshal([]byte(extractJSON(content)), &reply); err != nil {
		slog.Warn("failed to parse stt correction response", "error", err)
		return identity(originalText)
	}

	result := Result{
		OriginalText:  originalText,
		CorrectedText: originalText,
		Corrections:   []Item{},
		Confidence:    1.0,
	}
	if reply.CorrectedText != nil {
		result.CorrectedText = *reply.CorrectedText
	}
	if reply.STTCorrections != nil {
		result.Corrections = reply.STTCorrections
	}
	if reply.Confidence != nil {
		result.Confidence = *reply.Confidence
	}
	return result
}

// extractJSON strips an optional markdown code fence around the payload.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)

	if _, after, ok := strings.Cut(s, "```json"); ok {
		if inner, _, ok := strings.Cut(after, "```"); ok {
			return strings.TrimSpace(inner)
		}
		return strings.TrimSpace(after)
	}
	if _, after, ok := strings.Cut(s, "```"); ok {
		if inner, _, ok := strings.Cut(after, "```"); ok {
			return strings.TrimSpace(inner)
		}
		return strings.TrimSpace(after)
	}
	return s
}
