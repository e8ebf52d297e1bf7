package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// GeminiConfig carries the settings needed to build a Gemini gateway.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// geminiGateway implements Gateway on top of the Google GenAI SDK.
type geminiGateway struct {
	client  *genai.Client
	model   string
	cfg     *genai.GenerateContentConfig
	timeout time.Duration
	log     zerolog.Logger
}

// NewGeminiGateway connects to the Gemini API and returns a Gateway bound to
// the configured model. A missing API key is a configuration error and is
// reported immediately rather than on first use.
func NewGeminiGateway(ctx context.Context, cfg GeminiConfig, log zerolog.Logger) (Gateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini model name is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	temp := cfg.Temperature
	gen := &genai.GenerateContentConfig{Temperature: &temp}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	lg := log.With().Str("component", "gemini_gateway").Logger()
	lg.Info().Str("model", cfg.Model).Msg("gemini gateway initialized")

	return &geminiGateway{
		client:  client,
		model:   cfg.Model,
		cfg:     gen,
		timeout: timeout,
		log:     lg,
	}, nil
}

// Complete sends the prompt as a single user content part. File references
// are appended as plain text lines; the model reasons about them by name
// since the prompt already describes each upload.
func (g *geminiGateway) Complete(ctx context.Context, prompt string, files []FileRef) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text := prompt
	if len(files) > 0 {
		var b strings.Builder
		b.WriteString(text)
		b.WriteString("\n\nAttached file references:\n")
		for _, f := range files {
			b.WriteString("- ")
			b.WriteString(f.Name)
			if f.Path != "" {
				b.WriteString(" (")
				b.WriteString(f.Path)
				b.WriteString(")")
			}
			b.WriteString("\n")
		}
		text = b.String()
	}

	contents := []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: text}}},
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.cfg)
	if err != nil {
		g.log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("completion failed")
		return "", &GatewayError{Op: "generate content", Err: err}
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return "", &GatewayError{Op: "generate content", Err: errors.New("empty completion")}
	}

	g.log.Debug().Dur("elapsed", time.Since(start)).Int("reply_len", len(reply)).Msg("completion ok")
	return reply, nil
}
