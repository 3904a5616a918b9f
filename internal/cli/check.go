package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/jumpcut/internal/deps"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report availability of ffmpeg, ffprobe, and whisper.cpp",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.load(cmd)
			if err != nil {
				return err
			}
			reqs := deps.Edit(cfg)
			statuses := deps.CheckBinaries(reqs)
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := "ok"
				if !s.Available {
					state = "missing"
				}
				rows = append(rows, []string{s.Name, state, s.Command, s.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Dependency", "Status", "Command", "Detail"},
				rows,
				nil,
			))
			return deps.Require(reqs)
		},
	}
}
