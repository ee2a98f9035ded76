package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/linuxmatters/roomtone/internal/audio"
	"github.com/linuxmatters/roomtone/internal/capture"
	"github.com/linuxmatters/roomtone/internal/cli"
	"github.com/linuxmatters/roomtone/internal/logging"
	"github.com/linuxmatters/roomtone/internal/processor"
	"github.com/linuxmatters/roomtone/internal/ui"
)

var (
	version = "0.0.1"
)

// versionFlag prints version information and exits
type versionFlag bool

func (v versionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	cli.PrintVersion(vars["version"])
	app.Exit(0)
	return nil
}

// DenoiseFlags are the noise reduction settings shared by record and clean
type DenoiseFlags struct {
	TransformSize   int     `default:"2048" help:"STFT window length in samples (512-4096, steps of 512)"`
	Sensitivity     float64 `default:"1.2" help:"Gate threshold in noise standard deviations (0.5-3.0)"`
	SmoothingRadius int     `default:"5" help:"Odd mask smoothing kernel size (1-11)"`
	GatePasses      int     `default:"2" help:"Gate, mask and smooth iterations (1-8)"`
	Adaptive        bool    `help:"Tune sensitivity, passes and smoothing from the input"`
}

func (f DenoiseFlags) apply(cfg *processor.Config) {
	cfg.TransformSize = f.TransformSize
	cfg.Sensitivity = f.Sensitivity
	cfg.SmoothingRadius = f.SmoothingRadius
	cfg.GatePasses = f.GatePasses
	cfg.Adaptive = f.Adaptive
}

// RecordCmd captures from the default microphone and denoises the capture
type RecordCmd struct {
	DenoiseFlags `embed:""`

	Duration   int    `short:"d" default:"5" help:"Seconds to record (1-60)"`
	SampleRate int    `default:"48000" help:"Capture sample rate (16000, 44100 or 48000)"`
	Output     string `short:"o" type:"path" default:"roomtone.wav" help:"Where to write the denoised recording"`
}

// CleanCmd denoises existing WAV files
type CleanCmd struct {
	DenoiseFlags `embed:""`

	NoiseStart  float64  `help:"Start of the noise reference in seconds"`
	NoiseLength float64  `help:"Length of the noise reference in seconds; 0 finds the quietest segment"`
	Files       []string `arg:"" name:"files" help:"WAV files to denoise" type:"existingfile"`
}

// AnalyzeCmd measures WAV files without processing them
type AnalyzeCmd struct {
	Files []string `arg:"" name:"files" help:"WAV files to analyse" type:"existingfile"`
}

// CLI defines the command-line interface
type CLI struct {
	Version versionFlag     `short:"v" help:"Show version information"`
	Config  kong.ConfigFlag `short:"c" help:"Path to JSON config file (optional)"`
	Logs    bool            `help:"Save an analysis report next to each output"`
	Debug   bool            `help:"Write a debug log to roomtone-debug.log"`

	Record  RecordCmd  `cmd:"" help:"Record from the default microphone and remove background noise"`
	Clean   CleanCmd   `cmd:"" help:"Remove background noise from WAV files"`
	Analyze AnalyzeCmd `cmd:"" help:"Measure WAV files and suggest settings"`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("roomtone"),
		kong.Description("Spectral noise reduction for voice recordings"),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	logger := zap.NewNop()
	stopLogger := func() {}
	if cliArgs.Debug {
		debugLogger, stop, err := logging.NewDebugLogger(logging.DebugLogName)
		if err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
		logger, stopLogger = debugLogger, stop
	}

	var err error
	switch ctx.Command() {
	case "record":
		err = runRecord(cliArgs, logger)
	case "clean <files>":
		err = runClean(cliArgs, logger)
	case "analyze <files>":
		err = runAnalyze(cliArgs, logger)
	default:
		err = ctx.PrintUsage(false)
	}
	stopLogger()

	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// job is one unit of work shown in the UI
type job struct {
	name  string
	input string // Empty for a microphone capture
	run   func(ph *progressHandler) (*processor.ProcessingResult, error)
}

func (j job) recording() bool {
	return j.input == ""
}

func runRecord(cliArgs *CLI, logger *zap.Logger) error {
	cmd := cliArgs.Record

	cfg := processor.DefaultConfig()
	cfg.DurationSeconds = cmd.Duration
	cfg.SampleRate = cmd.SampleRate
	cmd.apply(&cfg)
	cfg, err := processor.NewConfig(cfg)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := capture.NewSession(&capture.PortAudioDevice{}, logger)

	return runJobs(sigCtx, cliArgs, cfg.GatePasses, logger, []job{{
		name: "microphone",
		run: func(ph *progressHandler) (*processor.ProcessingResult, error) {
			result, err := processor.RecordAndDenoise(ph.ctx, session, true, cfg, logger,
				capture.ReporterFunc(ph.captureProgress), ph.stageProgress)
			if err != nil {
				return nil, err
			}
			if err := audio.WriteWAV(cmd.Output, result.Output); err != nil {
				return nil, err
			}
			result.OutputPath = cmd.Output
			return result, nil
		},
	}})
}

func runClean(cliArgs *CLI, logger *zap.Logger) error {
	cmd := cliArgs.Clean

	cfg := processor.DefaultConfig()
	cmd.apply(&cfg)
	if err := cfg.ValidateDenoise(); err != nil {
		return err
	}

	var noise *processor.NoiseWindow
	if cmd.NoiseLength > 0 {
		noise = &processor.NoiseWindow{Start: cmd.NoiseStart, Length: cmd.NoiseLength}
	}

	jobs := make([]job, len(cmd.Files))
	for i, inputPath := range cmd.Files {
		jobs[i] = job{
			name:  inputPath,
			input: inputPath,
			run: func(ph *progressHandler) (*processor.ProcessingResult, error) {
				return processor.ProcessFile(inputPath, cfg, noise, logger, ph.stageProgress)
			},
		}
	}

	return runJobs(context.Background(), cliArgs, cfg.GatePasses, logger, jobs)
}

// runJobs drives the processing UI while jobs run one after another in the
// background
func runJobs(ctx context.Context, cliArgs *CLI, gatePasses int, logger *zap.Logger, jobs []job) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.name
	}

	model := ui.NewModel(names, gatePasses, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())

	failed := 0
	done := make(chan struct{})
	go func() {
		defer close(done)

		for i, j := range jobs {
			if ctx.Err() != nil {
				break
			}

			logger.Debug("starting job", zap.Int("index", i), zap.String("name", j.name))
			p.Send(ui.JobStartMsg{JobIndex: i})

			ph := newProgressHandler(ctx, p, j.recording())
			result, err := j.run(ph)
			ph.finish()
			if err != nil {
				logger.Error("job failed", zap.String("name", j.name), zap.Error(err))
				failed++
				p.Send(ui.JobCompleteMsg{JobIndex: i, Error: err})
				continue
			}

			if cliArgs.Logs {
				reportData := logging.ReportData{
					InputPath:   j.input,
					OutputPath:  result.OutputPath,
					StartTime:   ph.start,
					EndTime:     time.Now(),
					CaptureTime: ph.captureTime,
					DenoiseTime: ph.denoiseTime,
					Result:      result,
				}
				if err := logging.GenerateReport(reportData); err != nil {
					logger.Warn("failed to generate log file", zap.Error(err))
				}
			}

			p.Send(ui.JobCompleteMsg{
				JobIndex:   i,
				OutputPath: result.OutputPath,
				Input:      result.Input,
				Final:      result.Final,
				Degenerate: result.Denoise.Degenerate,
			})
		}

		p.Send(ui.AllCompleteMsg{})
	}()

	_, err := p.Run()
	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d job(s) failed", failed, len(jobs))
	}
	return nil
}

func runAnalyze(cliArgs *CLI, logger *zap.Logger) error {
	paths := cliArgs.Analyze.Files

	model := ui.NewAnalysisModel(paths)
	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		for i, inputPath := range paths {
			p.Send(ui.AnalysisStartMsg{Index: i})
			m, meta, err := processor.AnalyzeFile(inputPath)
			if err != nil {
				logger.Error("analysis failed", zap.String("path", inputPath), zap.Error(err))
			}
			p.Send(ui.AnalysisCompleteMsg{Index: i, Measurements: m, Metadata: meta, Error: err})
		}
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}

	am, ok := final.(ui.AnalysisModel)
	if !ok || !am.Done {
		return errors.New("analysis cancelled")
	}

	var errs []error
	for _, r := range am.Results {
		if r.Error != nil {
			errs = append(errs, r.Error)
			continue
		}
		logging.DisplayAnalysisResults(os.Stdout, r.Path, r.Metadata, r.Measurements)
	}
	return errors.Join(errs...)
}

// progressHandler forwards capture and denoiser progress to the UI and
// times each stage
type progressHandler struct {
	ctx       context.Context
	p         *tea.Program
	recording bool

	start        time.Time
	denoiseStart time.Time
	captureTime  time.Duration
	denoiseTime  time.Duration
}

func newProgressHandler(ctx context.Context, p *tea.Program, recording bool) *progressHandler {
	return &progressHandler{ctx: ctx, p: p, recording: recording, start: time.Now()}
}

func (ph *progressHandler) captureProgress(current, total int) {
	ph.p.Send(ui.CaptureProgressMsg{Current: current, Total: total})
}

func (ph *progressHandler) stageProgress(state processor.State, pass int, progress float64) {
	if ph.denoiseStart.IsZero() {
		ph.denoiseStart = time.Now()
		if ph.recording {
			ph.captureTime = ph.denoiseStart.Sub(ph.start)
		}
	}
	ph.p.Send(ui.StageMsg{State: state, Pass: pass, Progress: progress})
}

func (ph *progressHandler) finish() {
	if !ph.denoiseStart.IsZero() {
		ph.denoiseTime = time.Since(ph.denoiseStart)
	}
}
