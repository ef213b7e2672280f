package cmd

import (
	"context"
	"strconv"

	"github.com/jsphweid/markovmidi/config"
	"github.com/jsphweid/markovmidi/logger"
	"github.com/jsphweid/markovmidi/model"
	"github.com/jsphweid/markovmidi/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index [maxNum]",
	Short: "Creates corpus index",
	Long:  `Extracts per-voice note sequences from the input and stores them for generate --from-index and serve.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			maxNum, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrap(err, "maxNum must be an integer")
			}
			cfg.MaxFiles = maxNum
		}
		_, err := Index(cmd.Context(), cfg)
		return err
	},
}

func Index(ctx context.Context, c *config.Config) (model.Corpus, error) {
	learned, err := LoadCorpus(ctx, c)
	if err != nil {
		return learned, err
	}
	if err := util.CreateBinary(c.CorpusPath, learned); err != nil {
		return learned, err
	}
	logger.Info("created corpus index", logger.Fields{"path": c.CorpusPath, "voices": len(learned.Sequences)})
	return learned, nil
}
