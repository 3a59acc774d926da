package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/config"
	"github.com/ikchen/macropulse/internal/agents"
	"github.com/ikchen/macropulse/internal/dataflows"
	"github.com/ikchen/macropulse/internal/llm"
	"github.com/ikchen/macropulse/internal/orchestrator"
)

// stubGenerator would fail any call; an interrupted cycle must never reach it.
type stubGenerator struct {
	calls int
}

func (g *stubGenerator) Generate(context.Context, llm.Request) (string, error) {
	g.calls++
	return "", errors.New("unexpected generation call")
}

func testSession(t *testing.T, gen llm.Generator) (*Session, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		AnalystTemp:       0.3,
		EditorTemp:        0.5,
		MaxTokens:         1000,
		MaxRetries:        1,
		RetryInitialDelay: time.Millisecond,
		RequestTimeout:    time.Second,
		MinMarketVolume:   100_000,
		CorrelationDays:   7,
		DataCacheDir:      t.TempDir(),
		OutputDir:         t.TempDir(),
	}
	set := agents.Settings{
		Temperature:  cfg.EditorTemp,
		MaxTokens:    cfg.MaxTokens,
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryInitialDelay,
	}
	return &Session{
		cfg:       cfg,
		collector: dataflows.NewCollector(cfg, zerolog.Nop()),
		orch:      orchestrator.New(cfg, gen, zerolog.Nop()),
		editor:    agents.NewEditorProducer(gen, set, zerolog.Nop()),
		log:       zerolog.Nop(),
	}, cfg
}

func TestRun_InterruptAbortsCycle(t *testing.T) {
	gen := &stubGenerator{}
	sess, _ := testSession(t, gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	final, err := sess.Run(ctx)
	if err == nil {
		t.Fatal("expected the cancelled cycle to fail")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if final != nil {
		t.Fatalf("an aborted cycle must not yield a report, got %+v", final)
	}
	if gen.calls != 0 {
		t.Fatalf("an aborted cycle must not call the generation service, got %d calls", gen.calls)
	}
}

func TestRunAndPersist_InterruptWritesNothing(t *testing.T) {
	sess, cfg := testSession(t, &stubGenerator{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sess.RunAndPersist(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no report files after an interrupt, found %d", len(entries))
	}
}
