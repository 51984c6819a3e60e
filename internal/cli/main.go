package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "clipkit <input>",
		Short:        "Cut captioned vertical clips from a long video",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.Flags().String("out", "out", "Output directory")
	root.Flags().String("config", "", "Config file (default ./clipkit.toml if present)")
	root.Flags().Int("segments", 3, "Number of clips to cut")
	root.Flags().Float64("min-length", 30, "Shortest spoken segment to consider, in seconds")
	root.Flags().String("aspect", "9:16", "Output aspect ratio")
	root.Flags().Bool("skip-captions", false, "Do not burn captions into the clips")
	root.Flags().Bool("keep-intermediates", false, "Keep raw cuts and the scratch workspace")
	root.Flags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")

	root.AddCommand(newChaptersCommand(), newHistoryCommand(), newInitCommand())
	return root
}
