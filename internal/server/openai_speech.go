package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const maxGeneratedRunes = 80

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIGenerator writes AI seat speeches through an OpenAI compatible
// chat completions endpoint. The engine supplies the deadline and falls
// back to its templates on any error.
type OpenAIGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewOpenAIGenerator(apiKey, model, baseURL string, timeout time.Duration) *OpenAIGenerator {
	return &OpenAIGenerator{
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *OpenAIGenerator) Describe(ctx context.Context, word string) (string, error) {
	if word == "" {
		return "", errors.New("no word to describe")
	}
	system := "You are playing a party game of hidden words. Reply with one short sentence that hints at your word without saying it. No quotes, no explanations."
	user := fmt.Sprintf("Your word is %q. Give your hint.", word)
	text, err := g.complete(ctx, system, user)
	if err != nil {
		return "", err
	}
	if strings.Contains(strings.ToLower(text), strings.ToLower(word)) {
		return "", errors.New("generated hint reveals the word")
	}
	return text, nil
}

func (g *OpenAIGenerator) Suspect(ctx context.Context, seat int) (string, error) {
	system := "You are a villager in a game of werewolf. Reply with one short sentence accusing another player. No quotes, no explanations."
	user := fmt.Sprintf("Accuse the player in seat %d and give a brief reason.", seat)
	return g.complete(ctx, system, user)
}

func (g *OpenAIGenerator) complete(ctx context.Context, system, user string) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("OpenAI API key is not configured")
	}
	payload, err := json.Marshal(openAIChatRequest{
		Model: g.model,
		Messages: []openAIChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.9,
		MaxTokens:   60,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build OpenAI request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build OpenAI request")
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach OpenAI: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read OpenAI response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("OpenAI request failed (%d)", resp.StatusCode)
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse OpenAI response")
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("OpenAI error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("OpenAI returned no choices")
	}
	text := sanitizeSpeech(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("OpenAI returned an empty speech")
	}
	return text, nil
}

// sanitizeSpeech keeps the first non-empty line, drops wrapping quotes
// and caps the length.
func sanitizeSpeech(raw string) string {
	var line string
	for _, candidate := range strings.Split(raw, "\n") {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			line = candidate
			break
		}
	}
	line = strings.Trim(line, "\"'“”")
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) > maxGeneratedRunes {
		line = strings.TrimSpace(string([]rune(line)[:maxGeneratedRunes]))
	}
	return line
}
