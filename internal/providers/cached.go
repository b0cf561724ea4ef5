package providers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/crucible/internal/cache"
)

// Cached wraps a Model with a response cache keyed by provider, model name,
// prompts and sampling settings.
type Cached struct {
	inner     Model
	modelName string
	cache     *cache.Cache
	log       *zap.Logger
}

// NewCached returns inner unchanged when c is nil or disabled.
func NewCached(inner Model, modelName string, c *cache.Cache, log *zap.Logger) Model {
	if c == nil || !c.Enabled() {
		return inner
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{inner: inner, modelName: modelName, cache: c, log: log}
}

func (c *Cached) Name() string { return c.inner.Name() }

func (c *Cached) Complete(ctx context.Context, req Request) (Response, error) {
	key := cache.HashKey(
		c.inner.Name(),
		c.modelName,
		req.System,
		req.User,
		fmt.Sprintf("%d|%g", req.MaxTokens, req.Temperature),
	)
	if content, ok := c.cache.Get(key); ok {
		c.log.Debug("response cache hit", zap.String("key", key[:12]))
		return Response{Content: content}, nil
	}
	resp, err := c.inner.Complete(ctx, req)
	if err != nil {
		return resp, err
	}
	if err := c.cache.Put(key, resp.Content); err != nil {
		c.log.Warn("response cache write failed", zap.Error(err))
	}
	return resp, nil
}
