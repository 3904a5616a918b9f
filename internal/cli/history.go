package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forPelevin/jumpcut/internal/store"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.load(cmd)
			if err != nil {
				return err
			}
			s, err := store.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.Recent(commandContextOf(cmd), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					string(r.Status),
					filepath.Base(r.Input),
					seconds(r.OriginalDuration),
					seconds(r.EditedDuration),
					outputOrError(r),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Started", "Status", "Input", "Original", "Edited", "Output / error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func outputOrError(r store.Run) string {
	if r.Error != "" {
		return r.Error
	}
	if r.Output != "" {
		return r.Output
	}
	return r.PlanPath
}
