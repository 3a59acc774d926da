// Package agents holds the analysis producers: four domain analysts and the
// editor that synthesizes their outputs. Each producer renders a prompt from
// its typed input projection, calls the generation service with retry, and
// normalizes the response into a validated structured output.
package agents

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/internal/llm"
)

// Settings is the per-producer configuration. Producers hold no other state
// and are safely single-use per cycle.
type Settings struct {
	Temperature  float32
	MaxTokens    int
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultSettings mirrors the analyst defaults: low temperature for stable
// analysis, three attempts with a one-second initial delay.
func DefaultSettings() Settings {
	return Settings{
		Temperature:  0.3,
		MaxTokens:    4000,
		MaxAttempts:  3,
		InitialDelay: time.Second,
	}
}

// pipeline composes the shared produce path for one producer: generation
// with retry followed by normalization into O. Prompt rendering stays in the
// concrete producer; failures of any stage collapse to nil.
type pipeline[O any] struct {
	name  string
	gen   llm.Generator
	set   Settings
	sleep llm.Sleeper
	log   zerolog.Logger
}

func newPipeline[O any](name string, gen llm.Generator, set Settings, log zerolog.Logger) pipeline[O] {
	return pipeline[O]{
		name: name,
		gen:  gen,
		set:  set,
		log:  log.With().Str("agent", name).Logger(),
	}
}

func (p *pipeline[O]) produce(ctx context.Context, system, user string) *O {
	text, err := llm.RunWithRetry(ctx, p.log, func(ctx context.Context) (string, error) {
		return p.gen.Generate(ctx, llm.Request{
			System:      system,
			User:        user,
			Temperature: p.set.Temperature,
			MaxTokens:   p.set.MaxTokens,
		})
	}, p.set.MaxAttempts, p.set.InitialDelay, p.sleep)
	if err != nil {
		p.log.Warn().Err(err).Int("attempts", p.set.MaxAttempts).Msg("generation failed")
		return nil
	}

	out, err := llm.Normalize[O](p.log, text)
	if err != nil {
		return nil
	}

	p.log.Info().Msg("analysis complete")
	return out
}
