package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	genaiopt "google.golang.org/api/option"

	"github.com/jimyoyo0329/socagent/generator"
)

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
}

func (g *googleGenerator) Generate(ctx context.Context, messages []generator.Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("messages are required")
	}

	model := g.client.GenerativeModel(g.options.Model)
	model.SetTemperature(g.options.Temperature)
	model.SetMaxOutputTokens(int32(g.options.MaxTokens))

	var parts []genai.Part
	for _, m := range messages {
		if m.Role == generator.RoleSystem {
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(m.Content)},
			}
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}

	if len(parts) == 0 {
		return "", errors.New("at least one user message is required")
	}

	rsp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}

	if rsp == nil || len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return "", errors.New("no response from Google")
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	result := strings.TrimSpace(b.String())
	if len(result) == 0 {
		return "", errors.New("no response from Google")
	}

	return result, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &googleGenerator{
		options: options,
	}

	client, err := genai.NewClient(
		context.Background(),
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create google generator: %v", err))
	}

	g.client = client

	return g
}
