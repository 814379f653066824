package llm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider 记录同时在途的最大调用数。
type countingProvider struct {
	inFlight atomic.Int64
	peak     atomic.Int64
	calls    atomic.Int64
	hold     time.Duration
	err      error
}

func (c *countingProvider) Name() string { return "counting" }

func (c *countingProvider) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	c.calls.Add(1)
	now := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		peak := c.peak.Load()
		if now <= peak || c.peak.CompareAndSwap(peak, now) {
			break
		}
	}

	select {
	case <-time.After(c.hold):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if c.err != nil {
		return "", c.err
	}
	return "ok:" + prompt, nil
}

func TestLimitBoundsInFlightCalls(t *testing.T) {
	stub := &countingProvider{hold: 20 * time.Millisecond}
	limited := Wrap(stub, Limit(3))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := limited.Generate(context.Background(), "p", "m")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(20), stub.calls.Load())
	assert.LessOrEqual(t, stub.peak.Load(), int64(3))
	assert.GreaterOrEqual(t, stub.peak.Load(), int64(1))
}

func TestLimitReleasesOnFailure(t *testing.T) {
	stub := &countingProvider{err: errors.New("boom")}
	limited := Wrap(stub, Limit(1))

	for i := 0; i < 5; i++ {
		_, err := limited.Generate(context.Background(), "p", "m")
		require.EqualError(t, err, "boom")
	}
	assert.Equal(t, int64(5), stub.calls.Load())
}

func TestLimitHonorsCancelledContext(t *testing.T) {
	stub := &countingProvider{hold: time.Second}
	limited := Wrap(stub, Limit(1))

	go func() {
		_, _ = limited.Generate(context.Background(), "slow", "m")
	}()
	require.Eventually(t, func() bool { return stub.inFlight.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := limited.Generate(ctx, "waiting", "m")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(1), stub.calls.Load())
}

func TestTimeout(t *testing.T) {
	stub := &countingProvider{hold: time.Second}
	_, err := Wrap(stub, Timeout(10*time.Millisecond)).Generate(context.Background(), "p", "m")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Same(t, Provider(stub), Timeout(0)(stub))
}

func TestGatewayAnnotatesAndLogs(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	failing := &countingProvider{err: errors.New("rate limited")}
	gw := NewGateway(failing, GatewayConfig{Concurrency: 2, Logger: logger})
	assert.Equal(t, "counting", gw.Name())

	_, err := gw.Generate(context.Background(), "p", "m")
	require.Error(t, err)
	assert.Equal(t, "counting: rate limited", err.Error())

	ok := &countingProvider{}
	gw = NewGateway(ok, GatewayConfig{Concurrency: 2, Logger: logger})
	text, err := gw.Generate(context.Background(), "hello", "m")
	require.NoError(t, err)
	assert.Equal(t, "ok:hello", text)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.InfoLevel, last.Level)
	assert.Equal(t, 5, last.Data["prompt_bytes"])
	assert.Equal(t, len("ok:hello"), last.Data["response_bytes"])
}

func TestWrapOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Provider) Provider {
			return &markProvider{next: next, name: name, order: &order}
		}
	}

	_, err := Wrap(&countingProvider{}, mark("outer"), mark("inner")).Generate(context.Background(), "p", "m")
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type markProvider struct {
	next  Provider
	name  string
	order *[]string
}

func (m *markProvider) Name() string { return m.next.Name() }
func (m *markProvider) Generate(ctx context.Context, prompt string, modelID string) (string, error) {
	*m.order = append(*m.order, m.name)
	return m.next.Generate(ctx, prompt, modelID)
}
