package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jsphweid/markovmidi/config"
	"github.com/jsphweid/markovmidi/corpus"
	"github.com/jsphweid/markovmidi/extract"
	"github.com/jsphweid/markovmidi/logger"
	"github.com/jsphweid/markovmidi/midi"
	"github.com/jsphweid/markovmidi/model"
	"github.com/jsphweid/markovmidi/pipeline"
	"github.com/jsphweid/markovmidi/random"
	"github.com/jsphweid/markovmidi/util"
	"github.com/spf13/cobra"
)

var fromIndex bool

func init() {
	generateCmd.Flags().StringVar(&flags.output, "output", "", "output file, or a directory to get a uniquely named file")
	generateCmd.Flags().BoolVar(&fromIndex, "from-index", false, "use the indexed corpus file instead of reading the input")
	addGenerationFlags(generateCmd)
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate [inputDir]",
	Short: "Generates a new MIDI file",
	Long:  `Reads the corpus, learns per-voice transition tables and writes a newly generated MIDI file.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.InputDir = args[0]
		}
		_, err := Generate(cmd.Context(), cfg, fromIndex)
		return err
	},
}

func newRandom(seed int64) (random.Source, int64) {
	if seed != 0 {
		return random.NewSeeded(seed), seed
	}
	return random.NewFromClock()
}

// LoadCorpus reads and extracts the configured input.
func LoadCorpus(ctx context.Context, c *config.Config) (model.Corpus, error) {
	sources, err := corpus.Load(ctx, c.InputDir, c.MaxFiles)
	if err != nil {
		return model.Corpus{}, err
	}
	if len(sources) == 0 {
		logger.Warn("no midi files found", logger.Fields{"input": c.InputDir})
	}
	return extract.Extract(sources), nil
}

func outputPath(path string, runID string) string {
	info, err := os.Stat(path)
	if strings.HasSuffix(path, string(os.PathSeparator)) || (err == nil && info.IsDir()) {
		return filepath.Join(path, "generated-"+runID+".mid")
	}
	return path
}

// Generate runs one generation and returns the written path, or "" when the
// corpus had nothing to learn from.
func Generate(ctx context.Context, c *config.Config, useIndex bool) (string, error) {
	runID := uuid.New().String()

	var learned model.Corpus
	var err error
	if useIndex {
		learned, err = util.ReadBinary[model.Corpus](c.CorpusPath)
	} else {
		learned, err = LoadCorpus(ctx, c)
	}
	if err != nil {
		return "", err
	}

	rng, seed := newRandom(c.Seed)
	logger.Info("generating", logger.Fields{"run_id": runID, "seed": seed})
	res, err := pipeline.Generate(&learned, c.Generation, rng)
	if err != nil {
		return "", err
	}
	if res.NothingToGenerate {
		return "", nil
	}

	out := outputPath(c.OutputPath, runID)
	if err := midi.WriteMidiFile(out, res.Song); err != nil {
		logger.Error("could not save generated file", err, logger.Fields{"run_id": runID, "path": out})
		return "", err
	}
	logger.Info("saved", logger.Fields{"run_id": runID, "path": out})
	return out, nil
}
