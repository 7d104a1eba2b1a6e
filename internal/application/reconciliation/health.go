package reconciliation

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storefront/backend/internal/domain/channel"
)

// CheckHealth pings each channel's adapter. An empty list checks every
// registered channel. Results come back in canonical channel order.
func (e *Engine) CheckHealth(ctx context.Context, channels []channel.Channel) []ChannelHealth {
	targets := e.resolveChannels(channels)
	out := make([]ChannelHealth, len(targets))

	var g errgroup.Group
	g.SetLimit(len(targets) + 1)
	for i, ch := range targets {
		g.Go(func() error {
			out[i] = e.ping(ctx, ch)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Engine) ping(ctx context.Context, ch channel.Channel) ChannelHealth {
	h := ChannelHealth{Channel: ch, CheckedAt: time.Now()}

	adapter, err := e.adapters.Get(ch)
	if err != nil {
		h.Error = err.Error()
		return h
	}

	pingCtx, cancel := context.WithTimeout(ctx, e.cfg.AdapterTimeout)
	defer cancel()

	start := time.Now()
	err = adapter.Ping(pingCtx)
	h.Latency = time.Since(start)
	if err != nil {
		h.Error = err.Error()
		e.log(ctx).Warn("Channel health check failed", zap.String("channel", ch.String()), zap.Error(err))
		return h
	}
	h.Healthy = true
	return h
}
