package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dotcommander/frontgen/internal/agent"
	"github.com/dotcommander/frontgen/internal/config"
	"github.com/dotcommander/frontgen/internal/ledger"
	"github.com/dotcommander/frontgen/internal/logging"
	"github.com/dotcommander/frontgen/internal/phase"
)

var version = "dev"

// newClient builds the inference backend; tests replace it.
var newClient = agent.NewFromConfig

type rootOptions struct {
	configPath  string
	backend     string
	maxModelLen int
	tpSize      int
	logLevel    string
	logFile     string
}

func newRootCommand() *cobra.Command {
	ro := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "frontgen",
		Short: "Generate a React/TypeScript frontend from a requirements document",
		Long: `frontgen drives a language model through the stages of building a React
frontend: plan, analyze, code and test, plus a standalone review.

Each stage is a separate invocation. Stages hand their results to the next one
through files in --output_dir:

  frontgen plan    --project_name shop --requirements_path shop.md
  frontgen analyze --project_name shop --requirements_path shop.md
  frontgen code    --project_name shop --requirements_path shop.md
  frontgen test    --project_name shop --requirements_path shop.md
  frontgen review  --project_path shop_frontend`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&ro.configPath, "config", "", "Config file (default $FRONTGEN_CONFIG or ~/.config/frontgen/config.yaml)")
	f.StringVar(&ro.backend, "backend", agent.BackendOpenAI, "Inference backend: openai | local")
	f.IntVar(&ro.maxModelLen, "max_model_len", 128000, "Context window for the local backend")
	f.IntVar(&ro.tpSize, "tp_size", 1, "Parallelism degree for the local backend")
	f.StringVar(&ro.logLevel, "log_level", "", "Log level: debug | info | warn | error")
	f.StringVar(&ro.logFile, "log_file", "", "Also write logs to this rotated file")

	cmd.AddCommand(newPlanCommand(ro))
	cmd.AddCommand(newAnalyzeCommand(ro))
	cmd.AddCommand(newCodeCommand(ro))
	cmd.AddCommand(newTestCommand(ro))
	cmd.AddCommand(newReviewCommand(ro))

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCommand().ExecuteContext(ctx)
}

// session is the wiring of one stage invocation.
type session struct {
	env    phase.Env
	closer io.Closer
}

// open loads the config and runs prepare, which fills config-derived options
// and validates them, before the logger and backend client are built.
func (ro *rootOptions) open(cmd *cobra.Command, model string, prepare func(*config.Config) error) (*session, error) {
	cfg, err := config.Load(ro.configPath)
	if err != nil {
		return nil, err
	}
	if err := prepare(cfg); err != nil {
		return nil, err
	}
	if ro.logLevel != "" {
		cfg.Logging.Level = ro.logLevel
	}
	if ro.logFile != "" {
		cfg.Logging.File = ro.logFile
	}

	logger, closer, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	client, err := newClient(cfg, agent.BackendOptions{
		Backend:     ro.backend,
		Model:       model,
		MaxModelLen: ro.maxModelLen,
		TPSize:      ro.tpSize,
	}, logger)
	if err != nil {
		closer.Close()
		return nil, err
	}

	return &session{
		env: phase.Env{
			Client: client,
			Stdout: cmd.OutOrStdout(),
			Logger: logger,
			RunID:  uuid.NewString(),
			Rates:  ledger.DefaultRates,
		},
		closer: closer,
	}, nil
}

// finish saves the ledger of a priced run, including one that failed
// part-way, and returns runErr.
func (s *session) finish(outputDir string, res *phase.Result, runErr error) error {
	defer s.closer.Close()

	if res == nil || !s.env.Client.Priced() {
		return runErr
	}
	if err := ledger.Save(phase.LedgerPath(outputDir), res.Ledger); err != nil {
		if runErr != nil {
			s.env.Logger.Error("ledger not saved", "error", err)
			return runErr
		}
		return err
	}
	return runErr
}

// validated is the prepare step of stages whose options need nothing from the
// config.
func validated(opts any) func(*config.Config) error {
	return func(*config.Config) error { return phase.Validate(opts) }
}

type modelDefaults struct {
	model       string
	temperature float64
	maxTokens   int
}

func addModelFlags(cmd *cobra.Command, o *phase.ModelOptions, d modelDefaults) {
	f := cmd.Flags()
	f.StringVar(&o.Model, "model", d.model, "Model identifier")
	f.Float64Var(&o.Temperature, "temperature", d.temperature, "Sampling temperature")
	f.IntVar(&o.MaxTokens, "max_tokens", d.maxTokens, "Maximum tokens to generate")
}

// addStageFlags registers the flags shared by the requirement-driven stages.
func addStageFlags(cmd *cobra.Command, o *phase.Options, d modelDefaults) {
	f := cmd.Flags()
	f.StringVar(&o.ProjectName, "project_name", "", "Project name (required)")
	f.StringVar(&o.RequirementsPath, "requirements_path", "", "Requirements document (required)")
	f.StringVar(&o.RequirementsFormat, "requirements_format", "markdown", "Requirements format: markdown | json | text")
	f.StringVar(&o.OutputDir, "output_dir", ".", "Directory for responses, trajectories and the cost ledger")
	addModelFlags(cmd, &o.ModelOptions, d)
}
