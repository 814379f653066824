package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiClient 是对官方 genai 客户端的薄封装。
type GeminiClient struct {
	cli *genai.Client
}

// NewGeminiClient 创建 Gemini 客户端。APIKey 为空时读取 GEMINI_API_KEY。
func NewGeminiClient(ctx context.Context, options Options) (*GeminiClient, error) {
	apiKey := options.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(KindGemini.CredentialEnv())
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", ErrMissingCredentials, KindGemini.CredentialEnv())
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{cli: cli}, nil
}

func (g *GeminiClient) Name() string { return string(KindGemini) }

// Generate 以单个文本 Part 发送 prompt，拼接首个候选的全部文本。
func (g *GeminiClient) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, modelID,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			builder.WriteString(part.Text)
		}
	}
	if builder.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return builder.String(), nil
}
