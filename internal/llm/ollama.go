package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/JexSrs/go-ollama"
)

const defaultOllamaHost = "http://127.0.0.1:11434"

// OllamaClient 通过本地 Ollama 服务调用 llama3 等开源模型。
type OllamaClient struct {
	client *ollama.Ollama
	host   string
}

// NewOllamaClient 创建 Ollama 客户端。
// 主机地址优先级：Options.OllamaHost > OLLAMA_HOST > 默认值。
func NewOllamaClient(options Options) (*OllamaClient, error) {
	host := strings.TrimSpace(options.OllamaHost)
	if host == "" {
		host = os.Getenv(KindLlama3.CredentialEnv())
	}
	if host == "" {
		host = defaultOllamaHost
	}

	ollamaURL, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if ollamaURL.Scheme == "" || ollamaURL.Host == "" {
		return nil, fmt.Errorf("invalid ollama host %q: expected scheme://host:port", host)
	}

	return &OllamaClient{
		client: ollama.New(*ollamaURL),
		host:   host,
	}, nil
}

func (c *OllamaClient) Name() string { return string(KindLlama3) }

// Host 返回实际连接的地址。
func (c *OllamaClient) Host() string { return c.host }

type ollamaOutcome struct {
	text string
	err  error
}

// Generate 调用 Ollama 的 Generate 接口。
// 该库不接受 context，因此在 goroutine 中执行调用，ctx 取消时立即返回。
func (c *OllamaClient) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	done := make(chan ollamaOutcome, 1)

	go func() {
		res, err := c.client.Generate(
			c.client.Generate.WithModel(modelID),
			c.client.Generate.WithPrompt(prompt),
		)
		if err != nil {
			done <- ollamaOutcome{err: fmt.Errorf("ollama generate: %w", err)}
			return
		}
		if !res.Done {
			done <- ollamaOutcome{err: errors.New("ollama generate: response not finished")}
			return
		}
		if res.Response == "" {
			done <- ollamaOutcome{err: ErrEmptyResponse}
			return
		}
		done <- ollamaOutcome{text: res.Response}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case out := <-done:
		return out.text, out.err
	}
}
