package model

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/guttosm/stockcast/internal/logger"
	"github.com/guttosm/stockcast/internal/metrics"
)

// Match describes how a ticker was resolved to a model.
type Match string

const (
	MatchExact       Match = "exact"
	MatchAnchor      Match = "anchor"
	MatchPlaceholder Match = "placeholder"
)

// Handle lends a cached network to a caller. The network must not be mutated.
type Handle struct {
	Network *Network
	Ticker  string // ticker whose artifact is lent
	Match   Match
}

// Registry is the process-wide ticker → model cache.
//
// Reads of cached handles go through sync.Map without locking. First loads
// are collapsed per ticker with singleflight, so two concurrent requests for
// the same ticker read the store once, and different tickers never wait on
// each other.
type Registry struct {
	store   Store
	anchor  string
	handles sync.Map // string → *Handle
	group   singleflight.Group
	log     zerolog.Logger
}

// NewRegistry builds a registry over store with the given anchor ticker.
//
// Parameters:
//   - store (Store): artifact source; ErrNotFound (and ErrInvalidArtifact) select the anchor/placeholder path.
//   - anchor (string): ticker whose trained model is lent to tickers without one.
//
// Returns:
//   - *Registry: empty; call Preload to cache the anchor before traffic arrives.
func NewRegistry(store Store, anchor string) *Registry {
	return &Registry{
		store:  store,
		anchor: anchor,
		log:    logger.With("registry"),
	}
}

// Anchor returns the configured anchor ticker.
func (r *Registry) Anchor() string { return r.anchor }

// Resolve returns the model for ticker:
//  1. cached handle
//  2. artifact from the store (cached)
//  3. the anchor's handle, if a trained anchor is already cached (not cached under ticker)
//  4. a placeholder network, cached under ticker
//
// Missing and invalid artifacts both move on to step 3. Store errors
// other than ErrNotFound are returned. A caller whose context is
// cancelled returns early; the shared load still completes and is cached.
func (r *Registry) Resolve(ctx context.Context, ticker string) (Handle, error) {
	if h, ok := r.cached(ticker); ok {
		return *h, nil
	}

	ch := r.group.DoChan(ticker, func() (any, error) {
		return r.load(context.WithoutCancel(ctx), ticker)
	})

	select {
	case <-ctx.Done():
		return Handle{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Handle{}, res.Err
		}
		return *res.Val.(*Handle), nil
	}
}

func (r *Registry) cached(ticker string) (*Handle, bool) {
	v, ok := r.handles.Load(ticker)
	if !ok {
		return nil, false
	}
	return v.(*Handle), true
}

func (r *Registry) load(ctx context.Context, ticker string) (*Handle, error) {
	if h, ok := r.cached(ticker); ok {
		return h, nil
	}

	net, err := r.store.Load(ctx, ticker)
	switch {
	case err == nil:
		h := &Handle{Network: net, Ticker: ticker, Match: MatchExact}
		r.handles.Store(ticker, h)
		metrics.ModelLoadsTotal.WithLabelValues(string(MatchExact)).Inc()
		r.log.Info().Str("ticker", ticker).Msg("model loaded")
		return h, nil

	case errors.Is(err, ErrNotFound):
		if errors.Is(err, ErrInvalidArtifact) {
			r.log.Warn().Err(err).Str("ticker", ticker).Msg("skipping invalid model artifact")
		}
		if ticker != r.anchor {
			if a, ok := r.cached(r.anchor); ok && !a.Network.Placeholder() {
				metrics.ModelLoadsTotal.WithLabelValues(string(MatchAnchor)).Inc()
				r.log.Warn().Str("ticker", ticker).Str("anchor", r.anchor).Msg("no model for ticker, using anchor model")
				return &Handle{Network: a.Network, Ticker: a.Ticker, Match: MatchAnchor}, nil
			}
		}
		h := &Handle{Network: NewPlaceholder(ticker), Ticker: ticker, Match: MatchPlaceholder}
		r.handles.Store(ticker, h)
		metrics.ModelLoadsTotal.WithLabelValues(string(MatchPlaceholder)).Inc()
		r.log.Warn().Str("ticker", ticker).Msg("no model or anchor, synthesized placeholder")
		return h, nil

	default:
		r.log.Error().Err(err).Str("ticker", ticker).Msg("model store failed")
		return nil, err
	}
}

// Preload resolves each ticker so the anchor is cached before traffic arrives.
func (r *Registry) Preload(ctx context.Context, tickers ...string) error {
	for _, t := range tickers {
		h, err := r.Resolve(ctx, t)
		if err != nil {
			return err
		}
		r.log.Info().Str("ticker", t).Str("match", string(h.Match)).Msg("model preloaded")
	}
	return nil
}

// Loaded returns the cached tickers in sorted order.
func (r *Registry) Loaded() []string {
	var out []string
	r.handles.Range(func(k, _ any) bool {
		out = append(out, k.(string))
		return true
	})
	sort.Strings(out)
	return out
}

// Len returns how many tickers are cached.
func (r *Registry) Len() int { return len(r.Loaded()) }
