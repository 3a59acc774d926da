// Package session wires one full analysis cycle together: collect upstream
// data, fan out the analysts, synthesize and persist the final report.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/config"
	"github.com/ikchen/macropulse/internal/agents"
	"github.com/ikchen/macropulse/internal/dataflows"
	"github.com/ikchen/macropulse/internal/display"
	"github.com/ikchen/macropulse/internal/llm"
	"github.com/ikchen/macropulse/internal/models"
	"github.com/ikchen/macropulse/internal/orchestrator"
	"github.com/ikchen/macropulse/internal/report"
)

// Session owns the full pipeline for the life of the process.
type Session struct {
	cfg       *config.Config
	collector *dataflows.Collector
	orch      *orchestrator.Orchestrator
	editor    *agents.EditorProducer
	log       zerolog.Logger
}

// New builds the generation client and every pipeline stage from the config.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Session, error) {
	gen, err := llm.NewChatGenerator(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init generation client: %w", err)
	}

	editorSet := agents.Settings{
		Temperature:  cfg.EditorTemp,
		MaxTokens:    cfg.MaxTokens,
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryInitialDelay,
	}

	return &Session{
		cfg:       cfg,
		collector: dataflows.NewCollector(cfg, log),
		orch:      orchestrator.New(cfg, gen, log),
		editor:    agents.NewEditorProducer(gen, editorSet, log),
		log:       log.With().Str("component", "session").Logger(),
	}, nil
}

// Run executes one cycle and returns the final report. The report is always
// non-nil on success; total upstream failure still yields the fallback
// report. A cancelled context aborts the cycle instead: an interrupt must
// never be dressed up as an all-analysts-failed report.
func (s *Session) Run(ctx context.Context) (*models.FinalReport, error) {
	if err := s.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	bundle := s.collector.Collect(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cycle aborted: %w", err)
	}

	result := s.orch.RunCycle(ctx, bundle)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cycle aborted: %w", err)
	}

	final := s.editor.Aggregate(ctx, agents.EditorInput{
		Fed:  result.Fed,
		Econ: result.Econ,
		Pred: result.Pred,
		Corr: result.Corr,
	})
	return final, nil
}

// RunAndPersist runs one cycle, writes the markdown report and prints the
// terminal summary.
func (s *Session) RunAndPersist(ctx context.Context) error {
	final, err := s.Run(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cycle aborted: %w", err)
	}

	display.ShowReport(final)

	path, err := report.Write(final, s.cfg.OutputDir)
	if err != nil {
		return err
	}
	display.ShowWritten(path)
	s.log.Info().Str("path", path).Msg("cycle complete")
	return nil
}
