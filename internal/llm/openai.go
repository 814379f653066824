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

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIClient 调用 OpenAI Chat Completions 接口。
// 任何兼容该接口的服务都可以通过 BaseURL 接入。
type OpenAIClient struct {
	http      *http.Client
	apiKey    string
	baseURL   string
	maxTokens int
}

// NewOpenAIClient 创建 OpenAI 客户端。APIKey 为空时读取 OPENAI_API_KEY。
func NewOpenAIClient(options Options) (*OpenAIClient, error) {
	apiKey := options.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(KindOpenAI.CredentialEnv())
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", ErrMissingCredentials, KindOpenAI.CredentialEnv())
	}

	baseURL := strings.TrimSpace(options.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}

	return &OpenAIClient{
		http:      httpClient,
		apiKey:    apiKey,
		baseURL:   baseURL,
		maxTokens: options.MaxTokens,
	}, nil
}

func (c *OpenAIClient) Name() string { return string(KindOpenAI) }

type openAIChatReq struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate 以单条 user 消息发送 prompt。
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	body, err := json.Marshal(openAIChatReq{
		Model:     modelID,
		Messages:  []openAIMessage{{Role: "user", Content: prompt}},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal openai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %s: %s", resp.Status, truncateBody(payload))
	}

	var out openAIChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}
