package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Middleware 为 Provider 叠加横切逻辑。
type Middleware func(Provider) Provider

// Wrap 按从左到右的顺序应用中间件：Wrap(p, A, B) => A(B(p))。
func Wrap(inner Provider, mws ...Middleware) Provider {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- 并发限制 --------

// Limit 用带权信号量限制同时在途的调用数。
// 调用前获取一个名额，无论成功失败都会归还；concurrency < 1 视为 1。
func Limit(concurrency int) Middleware {
	if concurrency < 1 {
		concurrency = 1
	}
	return func(next Provider) Provider {
		return &limited{next: next, sem: semaphore.NewWeighted(int64(concurrency))}
	}
}

type limited struct {
	next Provider
	sem  *semaphore.Weighted
}

func (l *limited) Name() string { return l.next.Name() }
func (l *limited) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer l.sem.Release(1)
	return l.next.Generate(ctx, prompt, modelID)
}

// -------- 超时 --------

// Timeout 为单次调用设置截止时间；d <= 0 时不做限制。
func Timeout(d time.Duration) Middleware {
	return func(next Provider) Provider {
		if d <= 0 {
			return next
		}
		return &timed{next: next, d: d}
	}
}

type timed struct {
	next Provider
	d    time.Duration
}

func (t *timed) Name() string { return t.next.Name() }
func (t *timed) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Generate(ctx, prompt, modelID)
}

// -------- 日志 --------

// WithLogging 记录请求大小、耗时与错误。logger 为 nil 时使用 logrus 标准 logger。
func WithLogging(logger logrus.FieldLogger) Middleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return func(next Provider) Provider {
		return &logged{next: next, log: logger}
	}
}

type logged struct {
	next Provider
	log  logrus.FieldLogger
}

func (l *logged) Name() string { return l.next.Name() }
func (l *logged) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	entry := l.log.WithFields(logrus.Fields{
		"provider":     l.next.Name(),
		"model":        modelID,
		"prompt_bytes": len(prompt),
	})
	entry.Debug("LLM request")

	start := time.Now()
	text, err := l.next.Generate(ctx, prompt, modelID)
	entry = entry.WithField("elapsed", time.Since(start).Round(time.Millisecond))
	if err != nil {
		entry.WithError(err).Debug("LLM request failed")
		return "", err
	}
	entry.WithField("response_bytes", len(text)).Info("LLM response received")
	return text, nil
}

// -------- 错误包装 --------

// Annotate 在错误前加上后端名称。
func Annotate() Middleware {
	return func(next Provider) Provider {
		return &annotated{next: next}
	}
}

type annotated struct{ next Provider }

func (a *annotated) Name() string { return a.next.Name() }
func (a *annotated) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	text, err := a.next.Generate(ctx, prompt, modelID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", a.next.Name(), err)
	}
	return text, nil
}
