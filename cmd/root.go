package cmd

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/jsphweid/markovmidi/config"
	"github.com/jsphweid/markovmidi/constants"
	"github.com/jsphweid/markovmidi/logger"
	"github.com/spf13/cobra"
)

// Version is set via ldflags during build
var Version = "dev"

var (
	cfg         *config.Config
	flushSentry = func() {}
)

type flagValues struct {
	input      string
	output     string
	corpusPath string
	logLevel   string
	port       string

	maxFiles     int
	maxPolyphony int
	maxVoices    int
	grid         int
	bars         int
	onsetProb    float64
	seed         int64
}

var flags flagValues

var rootCmd = &cobra.Command{
	Use:   "markovmidi",
	Short: "Markov chain MIDI generator",
	Long: `Learns per-voice note transitions from a corpus of MIDI files and
generates new multi-voice MIDI files that resemble it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.input, "input", constants.GetInputDir(), "corpus directory or s3://bucket/prefix")
	pf.StringVar(&flags.corpusPath, "corpus", constants.GetCorpusPath(), "path of the indexed corpus file")
	pf.IntVar(&flags.maxFiles, "max-files", 0, "read at most this many corpus files (0 = all)")
	pf.StringVar(&flags.logLevel, "log-level", "info", "debug|info|warn|error")
}

func addGenerationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&flags.maxPolyphony, "max-polyphony", constants.MaxGlobalPolyphony, "most notes sounding at once across all voices")
	f.IntVar(&flags.maxVoices, "max-voices", constants.MaxVoices, "most voices used")
	f.IntVar(&flags.grid, "grid", constants.GridStepTicks, "grid step in ticks")
	f.IntVar(&flags.bars, "bars", constants.Bars, "length of the generated section in bars")
	f.Float64Var(&flags.onsetProb, "onset-prob", constants.OnsetProbability, "chance of starting a note on a voice's step")
	f.Int64Var(&flags.seed, "seed", 0, "random seed (0 = from clock)")
}

func setup(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment variables", nil)
	}

	c, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, c)

	if err := logger.SetLevel(c.LogLevel); err != nil {
		return err
	}
	if c.SentryDSN != "" {
		flush, err := logger.InitSentry(c.SentryDSN, c.Environment, "markovmidi@"+Version)
		if err != nil {
			logger.Warn("sentry disabled", logger.Fields{"reason": err.Error()})
		} else {
			flushSentry = flush
		}
	}

	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("input") {
		c.InputDir = flags.input
	}
	if f.Changed("corpus") {
		c.CorpusPath = flags.corpusPath
	}
	if f.Changed("max-files") {
		c.MaxFiles = flags.maxFiles
	}
	if f.Changed("log-level") {
		c.LogLevel = flags.logLevel
	}
	if f.Changed("output") {
		c.OutputPath = flags.output
	}
	if f.Changed("port") {
		c.Port = flags.port
	}
	if f.Changed("max-polyphony") {
		c.Generation.MaxGlobalPolyphony = flags.maxPolyphony
	}
	if f.Changed("max-voices") {
		c.Generation.MaxVoices = flags.maxVoices
	}
	if f.Changed("grid") {
		c.Generation.GridStepTicks = flags.grid
	}
	if f.Changed("bars") {
		c.Generation.Bars = flags.bars
	}
	if f.Changed("onset-prob") {
		c.Generation.OnsetProbability = flags.onsetProb
	}
	if f.Changed("seed") {
		c.Seed = flags.seed
	}
}

func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		logger.Error("command failed", err, nil)
	}
	flushSentry()
	cobra.CheckErr(err)
}
