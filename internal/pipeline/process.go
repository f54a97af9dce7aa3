package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"builtwith/internal"
	"builtwith/internal/builtwith"
	"builtwith/internal/config"
	"builtwith/internal/console"
	"builtwith/internal/ollama"
	"builtwith/internal/storage"
	"builtwith/internal/util"
)

// DefaultWorkbook is the output name used when no domain is available to
// derive one from.
const DefaultWorkbook = "builtwith_analysis.xlsx"

type Fetcher interface {
	Lookup(ctx context.Context, domain string) (builtwith.Profile, error)
}

type Analyzer interface {
	Chat(ctx context.Context, model, prompt string) (string, error)
	ChatStream(ctx context.Context, model, prompt string, onToken func(string)) (string, error)
}

type RunRecorder interface {
	InsertRun(run internal.RunRecord) error
}

// Deps are the collaborators of a Service. Runs may be nil to disable run
// history; Fetcher and Analyzer are only needed by requests that use them.
type Deps struct {
	Fetcher  Fetcher
	Analyzer Analyzer
	Runs     RunRecorder
	Printer  *console.Printer
	Logger   *zap.Logger
}

type Service struct {
	cfg  config.Config
	deps Deps
	now  func() time.Time
}

func NewService(cfg config.Config, deps Deps) *Service {
	if deps.Printer == nil {
		deps.Printer = console.Discard()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{cfg: cfg, deps: deps, now: time.Now}
}

// Request describes one invocation of the workflow. Exactly one of Domain and
// JSONPath selects the profile source; JSONPath wins when both are set.
type Request struct {
	Command    string
	Domain     string
	JSONPath   string
	RepairJSON bool

	// Analyze asks the chat service for a summary. AnalysisText supplies one
	// directly and skips the service.
	Analyze      bool
	AnalysisText string
	Model        string
	Stream       bool
	// DegradeAnalysis turns a failed analysis into a warning.
	DegradeAnalysis bool

	Excel          bool
	InlineAnalysis bool
	Output         string

	ShowJSON bool
	// Quiet suppresses progress lines so the caller can own stdout.
	Quiet bool
}

type Result struct {
	RunID       string
	Profile     builtwith.Profile
	Source      internal.ProfileSource
	Extraction  Extraction
	Analysis    string
	AnalysisErr error
	OutputPath  string
}

// Run executes the request and records it in the run history. Errors are
// terminal; a degraded analysis is reported through Result.AnalysisErr.
func (s *Service) Run(ctx context.Context, req Request) (res Result, err error) {
	start := s.now()
	res.RunID = uuid.NewString()
	defer func() {
		s.record(req, res, err, start)
	}()

	p := s.deps.Printer
	if req.Quiet {
		p = console.Discard()
	}

	res.Profile, res.Source, err = s.load(ctx, req, p)
	if err != nil {
		return res, err
	}

	if apiErrors := res.Profile.APIErrorsPretty(); apiErrors != "" {
		p.Println("\nBuiltWith API returned errors:")
		p.Println(apiErrors)
		p.Println("\nNote: Analysis will still proceed with available data.")
		p.Println()
		s.deps.Logger.Warn("builtwith reported errors", zap.Int("count", len(res.Profile.APIErrors())))
	}

	if req.ShowJSON {
		p.Println()
		p.Banner("BuiltWith JSON Result:")
		p.Println(strings.TrimRight(string(res.Profile.Pretty()), "\n"))
		p.Rule()
		p.Println()
	}

	switch {
	case req.AnalysisText != "":
		res.Analysis = req.AnalysisText
	case req.Analyze:
		res.Analysis, err = s.analyze(ctx, req, res.Profile, p)
		if err != nil {
			if !req.DegradeAnalysis || ctx.Err() != nil {
				return res, err
			}
			res.Analysis = ""
			res.AnalysisErr = err
			p.Warnf("Could not analyze with Ollama: %v", err)
			p.Notef("Continuing with Excel export without Ollama analysis...")
			err = nil
		}
	}

	if !req.Excel {
		return res, nil
	}

	p.Println("\nExtracting technology stack data...")
	res.Extraction = ExtractTechnologies(res.Profile.Root())
	s.deps.Logger.Debug("extracted technologies",
		zap.Int("results", res.Extraction.Results),
		zap.Strings("shapes", res.Extraction.Shapes),
		zap.Int("records", len(res.Extraction.Records)))
	if res.Extraction.Warning != "" {
		p.Warnf("%s", res.Extraction.Warning)
		p.Println("The response structure may be different. Creating empty Excel with headers.")
	}

	res.OutputPath = s.OutputPath(req)
	p.Printf("Creating Excel file: %s\n", res.OutputPath)
	if err = ExportToXLSX(res.Extraction.Records, res.Analysis, res.OutputPath, ExportOptions{InlineAnalysis: req.InlineAnalysis}); err != nil {
		return res, errors.Wrap(err, "failed to create Excel file")
	}

	p.Println()
	p.Successf("Successfully created Excel file: %s", res.OutputPath)
	p.Printf("  - Technology rows: %d\n", len(res.Extraction.Records))
	switch {
	case req.InlineAnalysis && res.Analysis != "":
		p.Println("  - Ollama analysis appended: Yes")
	case req.InlineAnalysis:
		p.Println("  - Ollama analysis appended: No (Ollama unavailable)")
	case res.Analysis != "":
		p.Println("  - LLM analysis included: Yes")
	}
	return res, nil
}

// OutputPath resolves the workbook path for req. Without an explicit output
// the name is derived from the domain, e.g. example_com_analysis.xlsx.
// Relative paths land in the configured output directory.
func (s *Service) OutputPath(req Request) string {
	out := strings.TrimSpace(req.Output)
	if out == "" {
		out = DefaultWorkbook
		if domain := strings.TrimSpace(req.Domain); domain != "" {
			out = util.SafeFilename(domain) + "_analysis.xlsx"
		}
	}
	if filepath.IsAbs(out) || s.cfg.OutputDir == "" {
		return out
	}
	return filepath.Join(s.cfg.OutputDir, out)
}

func (s *Service) load(ctx context.Context, req Request, p *console.Printer) (builtwith.Profile, internal.ProfileSource, error) {
	if req.JSONPath != "" {
		p.Printf("Loading BuiltWith data from: %s\n", req.JSONPath)
		profile, err := builtwith.LoadFile(req.JSONPath, builtwith.LoadOptions{Repair: req.RepairJSON})
		return profile, internal.SourceFile, err
	}

	domain := strings.TrimSpace(req.Domain)
	if domain == "" {
		return builtwith.Profile{}, internal.SourceAPI, errors.WithStack(builtwith.ErrEmptyDomain)
	}
	if s.deps.Fetcher == nil {
		return builtwith.Profile{}, internal.SourceAPI, errors.New("no BuiltWith client configured")
	}
	p.Printf("Querying BuiltWith API for domain: %s\n", domain)
	profile, err := s.deps.Fetcher.Lookup(ctx, domain)
	if err != nil {
		return builtwith.Profile{}, internal.SourceAPI, errors.Wrap(err, "error fetching BuiltWith data")
	}
	return profile, internal.SourceAPI, nil
}

func (s *Service) analyze(ctx context.Context, req Request, profile builtwith.Profile, p *console.Printer) (string, error) {
	if s.deps.Analyzer == nil {
		return "", errors.WithStack(ollama.ErrUnavailable)
	}
	model := s.model(req)
	prompt := ollama.BuildPrompt(profile)
	p.Println("\nAnalyzing results with Ollama...")

	if req.Stream {
		p.Println("Analyzing with Ollama...")
		p.Println()
		p.Rule()
		analysis, err := s.deps.Analyzer.ChatStream(ctx, model, prompt, p.Token)
		p.Println()
		p.Rule()
		if err != nil {
			// Tokens already printed stay on screen; a cut-off answer is not kept.
			return "", err
		}
		return analysis, nil
	}

	p.Printf("Analyzing with Ollama (%s)...\n\n", model)
	analysis, err := s.deps.Analyzer.Chat(ctx, model, prompt)
	if err != nil {
		return "", err
	}
	p.Println()
	p.Banner("Ollama Analysis:")
	p.Println(analysis)
	p.Rule()
	return analysis, nil
}

func (s *Service) model(req Request) string {
	if m := strings.TrimSpace(req.Model); m != "" {
		return m
	}
	if s.cfg.OllamaModel != "" {
		return s.cfg.OllamaModel
	}
	return config.DefaultOllamaModel
}

func (s *Service) record(req Request, res Result, runErr error, start time.Time) {
	if s.deps.Runs == nil {
		return
	}
	run := internal.RunRecord{
		ID:         res.RunID,
		Command:    req.Command,
		Domain:     strings.TrimSpace(req.Domain),
		Source:     res.Source,
		Records:    len(res.Extraction.Records),
		Analysis:   res.Analysis != "",
		Output:     res.OutputPath,
		Status:     internal.RunOK,
		StartedAt:  start.UTC().Format(storage.TimeLayout),
		DurationMs: s.now().Sub(start).Milliseconds(),
	}
	if req.Analyze && req.AnalysisText == "" {
		run.Model = s.model(req)
	}
	if run.Source == "" {
		run.Source = internal.SourceAPI
		if req.JSONPath != "" {
			run.Source = internal.SourceFile
		}
	}
	if runErr != nil {
		run.Status = internal.RunFailed
		run.Error = util.Truncate(runErr.Error(), 500)
	}
	if err := s.deps.Runs.InsertRun(run); err != nil {
		s.deps.Logger.Warn("failed to record run", zap.String("id", run.ID), zap.Error(err))
	}
}

// ResolveAnalysisText treats value as a file path when such a file exists and
// as literal analysis text otherwise.
func ResolveAnalysisText(value string) (text string, fromFile bool, err error) {
	if value == "" {
		return "", false, nil
	}
	info, statErr := os.Stat(value)
	if statErr != nil || info.IsDir() {
		return value, false, nil
	}
	raw, err := os.ReadFile(value)
	if err != nil {
		return "", true, errors.Wrapf(err, "read analysis file %s", value)
	}
	return string(raw), true, nil
}
