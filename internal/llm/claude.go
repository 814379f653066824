package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultAnthropicURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
	defaultMaxTokens    = 4096
)

// ClaudeClient 调用 Anthropic Messages 接口。
type ClaudeClient struct {
	http      *http.Client
	apiKey    string
	baseURL   string
	maxTokens int
}

// NewClaudeClient 创建 Claude 客户端。APIKey 为空时读取 ANTHROPIC_API_KEY。
// Messages 接口要求 max_tokens，未配置时使用 4096。
func NewClaudeClient(options Options) (*ClaudeClient, error) {
	apiKey := options.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(KindClaude.CredentialEnv())
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", ErrMissingCredentials, KindClaude.CredentialEnv())
	}

	baseURL := strings.TrimSpace(options.BaseURL)
	if baseURL == "" {
		baseURL = defaultAnthropicURL
	}

	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}

	return &ClaudeClient{
		http:      httpClient,
		apiKey:    apiKey,
		baseURL:   baseURL,
		maxTokens: maxTokens,
	}, nil
}

func (c *ClaudeClient) Name() string { return string(KindClaude) }

type claudeReq struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResp struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate 发送单轮对话，拼接全部 text 内容块作为结果。
func (c *ClaudeClient) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	body, err := json.Marshal(claudeReq{
		Model:     modelID,
		MaxTokens: c.maxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal claude request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %s: %s", resp.Status, truncateBody(payload))
	}

	var out claudeResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode claude response: %w", err)
	}

	var builder strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	if builder.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return builder.String(), nil
}
