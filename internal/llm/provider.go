// Package llm 提供统一的 LLM 调用能力。
//
// 每个后端实现 Provider 接口；限流、超时、日志等横切逻辑通过 Middleware 叠加，
// 后端实现本身只负责一次 API 调用。
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Provider 是对单个 LLM 后端的抽象。
type Provider interface {
	// Name 返回后端名称（例如 openai）。
	Name() string
	// Generate 发送 prompt 并返回模型的文本响应。
	Generate(ctx context.Context, prompt string, modelID string) (string, error)
}

// ProviderKind 是受支持后端的封闭集合。
type ProviderKind string

// 受支持的后端。
const (
	KindOpenAI ProviderKind = "openai"
	KindClaude ProviderKind = "claude"
	KindLlama3 ProviderKind = "llama3"
	KindGemini ProviderKind = "gemini"
)

var (
	// ErrUnsupportedProvider 表示后端名称不在受支持集合内。
	ErrUnsupportedProvider = errors.New("unsupported LLM provider")
	// ErrMissingCredentials 表示后端所需的 API key 未配置。
	ErrMissingCredentials = errors.New("missing LLM credentials")
	// ErrEmptyResponse 表示后端返回成功但没有任何文本。
	ErrEmptyResponse = errors.New("empty response from LLM")
)

// Kinds 返回全部受支持的后端，顺序固定。
func Kinds() []ProviderKind {
	return []ProviderKind{KindOpenAI, KindClaude, KindLlama3, KindGemini}
}

// ParseProviderKind 把配置字符串解析为 ProviderKind，大小写不敏感。
func ParseProviderKind(name string) (ProviderKind, error) {
	normalized := ProviderKind(strings.ToLower(strings.TrimSpace(name)))
	for _, kind := range Kinds() {
		if kind == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
}

// DefaultModel 返回各后端推荐的默认模型。
func (k ProviderKind) DefaultModel() string {
	switch k {
	case KindOpenAI:
		return "gpt-4-turbo"
	case KindClaude:
		return "claude-3-5-sonnet-20241022"
	case KindLlama3:
		return "llama3"
	case KindGemini:
		return "gemini-2.5-flash"
	}
	return ""
}

// CredentialEnv 返回后端读取凭据的环境变量名。
func (k ProviderKind) CredentialEnv() string {
	switch k {
	case KindOpenAI:
		return "OPENAI_API_KEY"
	case KindClaude:
		return "ANTHROPIC_API_KEY"
	case KindLlama3:
		return "OLLAMA_HOST"
	case KindGemini:
		return "GEMINI_API_KEY"
	}
	return ""
}

// Options 是构造后端时的可选参数。
// 空字段使用后端自己的默认值或环境变量。
type Options struct {
	APIKey     string
	BaseURL    string
	MaxTokens  int
	OllamaHost string
	HTTPClient *http.Client
}

// NewProvider 按 kind 构造后端。
// 名称非法或凭据缺失会在任何网络请求之前返回错误。
func NewProvider(ctx context.Context, kind ProviderKind, options Options) (Provider, error) {
	switch kind {
	case KindOpenAI:
		return NewOpenAIClient(options)
	case KindClaude:
		return NewClaudeClient(options)
	case KindLlama3:
		return NewOllamaClient(options)
	case KindGemini:
		return NewGeminiClient(ctx, options)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, string(kind))
	}
}

// truncateBody 截断错误响应体，避免日志被整页 HTML 淹没。
func truncateBody(body []byte) string {
	const max = 2048
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}
