package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SystemPrompt is sent ahead of every user prompt, identically for every
// provider, so responses stay comparable.
const SystemPrompt = "You are Maano AI, an educational AI assistant. Provide helpful, accurate, and safe responses to students and teachers. Always prioritize educational value and safety."

// DefaultTimeout bounds a single adapter call.
const DefaultTimeout = 45 * time.Second

// CallStats reports one finished adapter call.
type CallStats struct {
	ModelID  string
	Provider Provider
	Duration time.Duration
	Err      error
	Tokens   TokenCount
}

// Observer receives a CallStats after every adapter call.
type Observer interface {
	ObserveCall(stats CallStats)
}

type nopObserver struct{}

func (nopObserver) ObserveCall(CallStats) {}

// Engine dispatches prompts to provider adapters and normalizes the results.
type Engine struct {
	registry *Registry
	adapters Adapters
	timeout  time.Duration
	logger   zerolog.Logger
	observer Observer
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithTimeout sets the per-call deadline. Zero disables it.
func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.timeout = d }
}

// WithLogger sets the logger used for provider failures.
func WithLogger(l zerolog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithObserver sets the call observer.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// NewEngine creates an Engine over registry and adapters.
func NewEngine(registry *Registry, adapters Adapters, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: registry,
		adapters: adapters,
		timeout:  DefaultTimeout,
		logger:   zerolog.Nop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the catalog the engine resolves models against.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Generate sends prompt to the model registered as modelID. Provider-side
// failures are reported in the returned envelope; the only error is
// ErrUnknownModel.
func (e *Engine) Generate(ctx context.Context, modelID, prompt string, opts *Options) (Envelope, error) {
	d, err := e.registry.Lookup(modelID)
	if err != nil {
		return Envelope{}, err
	}

	maxTokens, temperature := opts.resolve(d)
	req := Request{
		WireModel:   d.WireModel,
		System:      SystemPrompt,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	env := Envelope{
		ModelID:  d.ID,
		Provider: d.Provider,
		Metadata: Metadata{
			WireModel:  d.WireModel,
			Strengths:  d.Strengths,
			Weaknesses: d.Weaknesses,
		},
	}

	adapter, err := e.adapters.For(d.Provider)
	if err != nil {
		e.logger.Error().Err(err).Str("model", d.ID).Str("provider", string(d.Provider)).
			Msg("model catalog references a provider with no adapter")
		return env.failed(err), nil
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := e.complete(callCtx, d, adapter, req)
	elapsed := time.Since(start)

	env.Metadata.ResponseTimeMs = elapsed.Milliseconds()
	e.observer.ObserveCall(CallStats{
		ModelID:  d.ID,
		Provider: d.Provider,
		Duration: elapsed,
		Err:      err,
		Tokens:   completion.Tokens,
	})

	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%s call timed out after %s: %w", d.Provider, e.timeout, err)
		}
		e.logger.Warn().Err(err).
			Str("model", d.ID).
			Str("provider", string(d.Provider)).
			Dur("latency", elapsed).
			Msg("provider call failed")
		return env.failed(err), nil
	}

	env.Success = true
	env.Content = completion.Content
	env.Metadata.Usage = completion.Usage
	env.Metadata.FinishReason = completion.FinishReason
	env.Metadata.Extra = completion.Extra
	if completion.Tokens != (TokenCount{}) {
		tokens := completion.Tokens
		env.Metadata.Tokens = &tokens
	}
	return env, nil
}

// CompareAll runs Generate for every id at once and waits for all of them.
// The result has one envelope per id, in input order; an id that cannot be
// generated at all yields a failure envelope instead of aborting the batch.
func (e *Engine) CompareAll(ctx context.Context, prompt string, modelIDs []string, opts *Options) []Envelope {
	results := make([]Envelope, len(modelIDs))

	var g errgroup.Group
	for i, id := range modelIDs {
		g.Go(func() error {
			results[i] = e.settle(ctx, id, prompt, opts)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// complete calls the adapter, turning a panic into an ordinary call failure.
func (e *Engine) complete(ctx context.Context, d Descriptor, adapter Adapter, req Request) (c Completion, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("model", d.ID).Str("provider", string(d.Provider)).
				Interface("panic", r).Msg("adapter panicked")
			c, err = Completion{}, fmt.Errorf("%w: panic: %v", ErrGeneration, r)
		}
	}()
	return adapter.Complete(ctx, req)
}

func (e *Engine) settle(ctx context.Context, modelID, prompt string, opts *Options) Envelope {
	env, err := e.Generate(ctx, modelID, prompt, opts)
	if err != nil {
		return e.rejected(modelID, err)
	}
	return env
}

func (e *Engine) rejected(modelID string, err error) Envelope {
	provider := ProviderUnknown
	if d, lookupErr := e.registry.Lookup(modelID); lookupErr == nil {
		provider = d.Provider
	}
	return Envelope{ModelID: modelID, Provider: provider}.failed(err)
}
