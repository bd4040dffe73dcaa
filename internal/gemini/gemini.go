package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/clipping/internal/logger"
	"github.com/deusflow/clipping/internal/ratelimit"
)

const (
	DefaultModel = "gemini-1.5-flash"

	maxHeadlines   = 40
	maxOverviewLen = 600
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// genaiGenerator is the Generator backed by the Gemini API.
type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String(), nil
}

type Client struct {
	gen    Generator
	budget *ratelimit.Budget
	closer func() error
}

// NewClient connects to Gemini. budget caps the requests of one run.
func NewClient(ctx context.Context, apiKey string, budget *ratelimit.Budget) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		gen:    &genaiGenerator{client: client, model: DefaultModel},
		budget: budget,
		closer: client.Close,
	}, nil
}

// NewWithGenerator builds a Client around any Generator.
func NewWithGenerator(gen Generator, budget *ratelimit.Budget) *Client {
	return &Client{gen: gen, budget: budget}
}

func (c *Client) Close() {
	if c.closer != nil {
		if err := c.closer(); err != nil {
			logger.Warn("closing Gemini client", "error", err)
		}
	}
}

// Overview asks for a short Portuguese overview of the day's headlines.
func (c *Client) Overview(ctx context.Context, titles []string) (string, error) {
	if len(titles) == 0 {
		return "", fmt.Errorf("no headlines to summarize")
	}
	if c.budget != nil {
		if err := c.budget.Use(); err != nil {
			return "", err
		}
	}

	resp, err := c.gen.Generate(ctx, buildPrompt(titles))
	if err != nil {
		return "", err
	}
	return parseOverview(resp)
}

func buildPrompt(titles []string) string {
	if len(titles) > maxHeadlines {
		titles = titles[:maxHeadlines]
	}

	var b strings.Builder
	b.WriteString(`Você é editor de um clipping diário de notícias financeiras.

Leia as manchetes abaixo e escreva um panorama do dia em português do Brasil,
com 2 ou 3 frases e no máximo 500 caracteres.

REQUISITOS:
- Não invente fatos que não estejam nas manchetes.
- Não cite nomes de veículos.
- Responda estritamente no formato:

RESUMO: <panorama>

MANCHETES:
`)
	for _, t := range titles {
		b.WriteString("- ")
		b.WriteString(strings.TrimSpace(t))
		b.WriteString("\n")
	}
	return b.String()
}

var resumoLabel = regexp.MustCompile(`(?i)^\**\s*(RESUMO|PANORAMA)\s*\**\s*:\s*\**\s*`)

// parseOverview extracts the text after the RESUMO label, or the whole reply
// when the model ignored the format.
func parseOverview(response string) (string, error) {
	var parts []string
	found := false

	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if resumoLabel.MatchString(line) {
			found = true
			parts = parts[:0]
			if rest := strings.TrimSpace(resumoLabel.ReplaceAllString(line, "")); rest != "" {
				parts = append(parts, rest)
			}
			continue
		}
		parts = append(parts, line)
	}

	if !found {
		logger.Debug("overview label missing, using raw reply")
	}

	out := strings.TrimSpace(strings.Join(parts, " "))
	if out == "" {
		return "", fmt.Errorf("empty overview from Gemini")
	}
	if utf8.RuneCountInString(out) > maxOverviewLen {
		runes := []rune(out)
		out = strings.TrimSpace(string(runes[:maxOverviewLen])) + "…"
	}
	return out, nil
}
