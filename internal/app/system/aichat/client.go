// Package aichat is the generative-AI chat collaborator: a thin layer over
// the Gemini SDK that adds the assistant persona and fallback model rotation.
package aichat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// DefaultModels are tried, in order, when the provider model list is
// unavailable.
var DefaultModels = []string{"gemini-1.5-flash", "gemini-1.5-flash-8b", "gemini-1.5-pro"}

var (
	ErrNotConfigured = errors.New("aichat: missing API key")
	ErrEmptyReply    = errors.New("aichat: empty reply")
	ErrAllModels     = errors.New("aichat: every model failed")
)

// Message is one turn of conversation history. Role is "user" or "model".
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request is a chat call.
type Request struct {
	History []Message
	Message string
	// SystemInstruction replaces the default assistant persona when set.
	SystemInstruction string
	// UserContext is free text the default persona may reference.
	UserContext string
}

// Reply is the assistant's answer and the model that produced it.
type Reply struct {
	Text  string `json:"reply"`
	Model string `json:"model"`
}

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Models  []string // fallback list; DefaultModels when empty
	Cache   *ModelCache
	HTTP    *http.Client
	Logger  *zap.Logger
}

// Client is safe for concurrent use. The API key travels only in the
// x-goog-api-key header set by the SDK, never in a URL.
type Client struct {
	genai   *genai.Client
	initErr error
	cache   *ModelCache
	log     *zap.Logger
}

// New creates a Client. Without an API key no SDK client is built and Chat
// answers ErrNotConfigured.
func New(cfg Config) *Client {
	models := cfg.Models
	if len(models) == 0 {
		models = DefaultModels
	}
	cache := cfg.Cache
	if cache == nil {
		cache = NewModelCache(DefaultModelTTL, models)
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{cache: cache, log: log}
	if cfg.APIKey == "" {
		return c
	}
	hc := cfg.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	gc, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    base + "/",
			APIVersion: "v1beta",
		},
	})
	if err != nil {
		log.Error("genai client init failed", zap.Error(err))
		c.initErr = fmt.Errorf("aichat: init client: %w", err)
		return c
	}
	c.genai = gc
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.genai != nil || c.initErr != nil }

// SystemInstruction builds the default assistant persona.
func SystemInstruction(userContext string) string {
	if strings.TrimSpace(userContext) == "" {
		userContext = "No additional context."
	}
	return "You are Collabify Assistant, a project management expert.\n" +
		"Answer user questions about projects, collaboration, and productivity with clarity, precision, and empathy.\n" +
		"Provide detailed advice based on project management best practices.\n\n" +
		"Here is some context you can reference:\n" + userContext + "\n\n" +
		"This conversation is between a user and you, the assistant. Remain professional, approachable, and solution-focused.\n" +
		"The conversation may be in either Vietnamese or English; respond in the same language as the user."
}

var safety = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

func textContent(role, text string) *genai.Content {
	return &genai.Content{Role: role, Parts: []*genai.Part{{Text: text}}}
}

// buildRequest maps history onto user/model turns and fixes the sampling
// settings every model is called with.
func buildRequest(req Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	sys := req.SystemInstruction
	if strings.TrimSpace(sys) == "" {
		sys = SystemInstruction(req.UserContext)
	}
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		role := m.Role
		if role != "model" {
			role = "user"
		}
		contents = append(contents, textContent(role, m.Text))
	}
	contents = append(contents, textContent("user", req.Message))

	return contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: sys}}},
		Temperature:       genai.Ptr[float32](1),
		TopP:              genai.Ptr[float32](0.95),
		TopK:              genai.Ptr[float32](64),
		MaxOutputTokens:   8192,
		SafetySettings:    safety,
	}
}

// Chat sends req, trying each model at most once, starting with the one
// that answered last.
func (c *Client) Chat(ctx context.Context, req Request) (Reply, error) {
	if !c.Configured() {
		return Reply{}, ErrNotConfigured
	}
	if c.initErr != nil {
		return Reply{}, c.initErr
	}

	contents, cfg := buildRequest(req)
	models := c.cache.Order(c.cache.Models(ctx, c.ListModels))
	var lastErr error
	for _, model := range models {
		if ctx.Err() != nil {
			return Reply{}, ctx.Err()
		}
		text, err := c.generate(ctx, model, contents, cfg)
		if err != nil {
			c.log.Warn("chat model failed, rotating",
				zap.String("model", model),
				zap.Error(err))
			lastErr = err
			continue
		}
		c.cache.MarkGood(model)
		return Reply{Text: text, Model: model}, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no models available")
	}
	return Reply{}, fmt.Errorf("%w: %v", ErrAllModels, lastErr)
}

func (c *Client) generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p != nil {
				sb.WriteString(p.Text)
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyReply
	}
	return sb.String(), nil
}

// ListModels returns the provider's flash models that support
// generateContent.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	if c.genai == nil {
		return nil, ErrNotConfigured
	}
	names := []string{}
	for m, err := range c.genai.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		name := strings.TrimPrefix(m.Name, "models/")
		if !strings.Contains(name, "flash") {
			continue
		}
		for _, action := range m.SupportedActions {
			if action == "generateContent" {
				names = append(names, name)
				break
			}
		}
	}
	return names, nil
}
