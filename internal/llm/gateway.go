package llm

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// GatewayConfig 描述 Gateway 的运行参数。
type GatewayConfig struct {
	Concurrency int
	Timeout     time.Duration
	Logger      logrus.FieldLogger
}

// Gateway 是流水线访问 LLM 的唯一入口：
// 固定的中间件栈（日志、错误包装、并发限制、超时）包裹一个具体后端。
// 同一个 Gateway 可被多个 goroutine 并发使用，限额在它们之间共享。
type Gateway struct {
	provider Provider
	inner    Provider
}

// NewGateway 用 cfg 描述的中间件包裹 provider。
func NewGateway(provider Provider, cfg GatewayConfig) *Gateway {
	return &Gateway{
		inner: provider,
		provider: Wrap(provider,
			WithLogging(cfg.Logger),
			Annotate(),
			Limit(cfg.Concurrency),
			Timeout(cfg.Timeout),
		),
	}
}

// Name 返回被包裹后端的名称。
func (g *Gateway) Name() string { return g.inner.Name() }

// Generate 经过完整中间件栈发起一次调用。
func (g *Gateway) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	return g.provider.Generate(ctx, prompt, modelID)
}
