package analyst

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"go.uber.org/zap"
)

// Analyst runs the technical-analysis agent for one company at a time.
type Analyst struct {
	Toolbox    *Toolbox
	Model      string
	MaxTurns   int
	OutputFile string
	Logger     *zap.Logger
	Now        func() time.Time
}

// New creates an Analyst.
func New(tb *Toolbox, model string, maxTurns int, outputFile string, logger *zap.Logger) *Analyst {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tb.Logger == nil {
		tb.Logger = logger
	}
	return &Analyst{
		Toolbox:    tb,
		Model:      model,
		MaxTurns:   maxTurns,
		OutputFile: outputFile,
		Logger:     logger,
		Now:        time.Now,
	}
}

// Agent builds the agent for company.
func (a *Analyst) Agent(company string) *agents.Agent {
	return agents.New(AgentName).
		WithInstructions(Instructions(company, a.Now())).
		WithModel(a.Model).
		WithTools(a.Toolbox.Tools()...)
}

// Run executes the analysis and writes the final report to OutputFile.
func (a *Analyst) Run(ctx context.Context, company string) (string, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return "", fmt.Errorf("company is required")
	}
	a.Logger.Info("starting technical analysis",
		zap.String("company", company),
		zap.String("model", a.Model),
		zap.Int("max_turns", a.MaxTurns))

	runner := agents.Runner{Config: agents.RunConfig{
		MaxTurns:     uint64(a.MaxTurns),
		WorkflowName: "Technical analysis",
	}}
	result, err := runner.Run(ctx, a.Agent(company), TaskDescription(company))
	if err != nil {
		return "", fmt.Errorf("run agent: %w", err)
	}
	report := fmt.Sprint(result.FinalOutput)

	if err := WriteReport(a.OutputFile, report); err != nil {
		return report, err
	}
	a.Logger.Info("technical analysis written", zap.String("path", a.OutputFile), zap.Int("bytes", len(report)))
	return report, nil
}

// WriteReport stores report at path, creating parent directories.
func WriteReport(path, report string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
