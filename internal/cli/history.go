package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clipkit/clipkit/internal/domain/timecode"
	"github.com/clipkit/clipkit/internal/store"
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show runs recorded in the output directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runHistory(cmd, runID)
		},
	}
	cmd.Flags().String("out", "out", "Output directory holding clipkit.db")
	cmd.Flags().Int("limit", 10, "How many runs to show")
	return cmd
}

func runHistory(cmd *cobra.Command, runID string) error {
	fl := cmd.Flags()
	outDir, _ := fl.GetString("out")
	limit, _ := fl.GetInt("limit")

	dbPath := filepath.Join(outDir, "clipkit.db")
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no run history at %s", dbPath)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	if runID != "" {
		clips, err := st.RunClips(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if len(clips) == 0 {
			fmt.Fprintf(out, "no clips recorded for run %s\n", runID)
			return nil
		}
		rows := make([][]string, 0, len(clips))
		for _, c := range clips {
			rows = append(rows, []string{
				c.ID,
				timecode.Format(c.StartSec) + " - " + timecode.Format(c.EndSec),
				strconv.Itoa(c.Score),
				c.File,
				captionMark(c.Captioned),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Clip", "Range", "Score", "File", "Captions"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
		))
		return nil
	}

	runs, err := st.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded yet")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := r.Status
		if r.Err != "" {
			status += ": " + firstLine(r.Err)
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.ID,
			r.Input,
			status,
			strconv.Itoa(r.Clips),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Started", "Run", "Input", "Status", "Clips"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
	return nil
}

// firstLine trims multi-line tool output out of stored errors so the
// table stays one row per run.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
