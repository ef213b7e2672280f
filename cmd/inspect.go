package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/markovmidi/markov"
	"github.com/jsphweid/markovmidi/model"
	"github.com/jsphweid/markovmidi/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [corpusPath]",
	Short: "Inspects an indexed corpus",
	Long:  `Prints the transition table of every voice in an indexed corpus.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.CorpusPath
		if len(args) == 1 {
			path = args[0]
		}
		learned, err := util.ReadBinary[model.Corpus](path)
		if err != nil {
			return err
		}
		inspect(cmd.OutOrStdout(), &learned)
		return nil
	},
}

func inspect(w io.Writer, c *model.Corpus) {
	tables := markov.Build(c.Sequences)
	for _, v := range util.SortedKeys(c.Sequences) {
		fmt.Fprintf(w, "voice %v: %v notes", v, len(c.Sequences[v]))
		if program, ok := c.Programs[v]; ok {
			fmt.Fprintf(w, ", program %v", program)
		}
		fmt.Fprintln(w)

		table := tables[v]
		for _, prev := range util.SortedKeys(table) {
			row := table.Row(prev)
			fmt.Fprintf(w, "  %v ->", prev)
			for _, next := range row.Next {
				fmt.Fprintf(w, " %v:%v", next, row.Count(next))
			}
			fmt.Fprintln(w)
		}
	}
}
