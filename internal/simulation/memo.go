package simulation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"ec-simulator/internal/model"
)

// Cache stores finished results keyed by the normalized configuration.
type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool)
	Set(ctx context.Context, key string, res *Result)
}

// Memoized runs the engine at most once per distinct configuration for as
// long as the cache retains the entry.
type Memoized struct {
	engine *Engine
	cache  Cache
}

// NewMemoized wraps engine. A nil cache disables memoization.
func NewMemoized(engine *Engine, cache Cache) *Memoized {
	if engine == nil {
		engine = New()
	}
	return &Memoized{engine: engine, cache: cache}
}

// Run returns the result for cfg and whether it came from the cache.
func (m *Memoized) Run(ctx context.Context, cfg model.SimulationConfig) (*Result, bool, error) {
	if m.cache == nil {
		res, err := m.engine.Run(cfg)
		return res, false, err
	}

	key, err := Key(cfg)
	if err != nil {
		return nil, false, err
	}
	if cached, ok := m.cache.Get(ctx, key); ok {
		return cached, true, nil
	}

	res, err := m.engine.Run(cfg)
	if err != nil {
		return nil, false, err
	}
	m.cache.Set(ctx, key, res)
	return res, false, nil
}

// Key derives a deterministic cache key from the normalized configuration.
func Key(cfg model.SimulationConfig) (string, error) {
	raw, err := json.Marshal(cfg.Normalize())
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	hash := sha256.Sum256(raw)
	return hex.EncodeToString(hash[:]), nil
}
