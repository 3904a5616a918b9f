package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forPelevin/jumpcut/internal/config"
	"github.com/forPelevin/jumpcut/internal/deps"
	"github.com/forPelevin/jumpcut/internal/pipeline"
)

func newEditCommand(ctx *commandContext) *cobra.Command {
	flags := &planFlags{}
	cmd := &cobra.Command{
		Use:   "edit <input>",
		Short: "Plan and render an edited copy of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, flags, args[0], false)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	flags := &planFlags{}
	cmd := &cobra.Command{
		Use:   "plan <input>",
		Short: "Write the edit plan without rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, flags, args[0], true)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, flags *planFlags, input string, planOnly bool) error {
	cfg, log, err := ctx.load(cmd)
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, cfg); err != nil {
		return err
	}

	pc := pipeline.Config{
		App:      cfg,
		Input:    input,
		Output:   flags.output,
		PlanOnly: planOnly,
		Logger:   log,
	}
	if pc.Output != "" {
		if pc.Output, err = config.ExpandPath(pc.Output); err != nil {
			return fmt.Errorf("--output: %w", err)
		}
	}
	if err := pc.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := deps.Require(deps.Edit(cfg)); err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(commandContextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.Run(runCtx, pc)
	if res.PlanPath != "" {
		printResult(cmd.OutOrStdout(), res)
	}
	return err
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		planPath  string
		output    string
		copyCodec bool
		workers   int
	)
	cmd := &cobra.Command{
		Use:   "render <input>",
		Short: "Render a saved or hand-written plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := ctx.load(cmd)
			if err != nil {
				return err
			}
			applyRenderFlags(cmd, cfg, copyCodec, workers)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if err := deps.Require(deps.Render(cfg)); err != nil {
				return err
			}
			out, err := config.ExpandPath(output)
			if err != nil {
				return fmt.Errorf("--output: %w", err)
			}

			runCtx, stop := signal.NotifyContext(commandContextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := pipeline.RenderPlan(runCtx, pipeline.RenderConfig{
				App:      cfg,
				Input:    args[0],
				PlanPath: planPath,
				Output:   out,
				Logger:   log,
			})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "Plan JSON file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Edited video path")
	cmd.Flags().BoolVar(&copyCodec, "copy-codec", false, "Stream copy instead of re-encoding (cuts snap to keyframes)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent segment extractions")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func commandContextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printResult(w io.Writer, res pipeline.Result) {
	fmt.Fprintln(w, renderSummary(res.Plan))
	rows := [][]string{{"plan", res.PlanPath}}
	if res.Output != "" {
		rows = append(rows, []string{"output", res.Output})
	}
	if res.CaptionsPath != "" {
		rows = append(rows, []string{"captions", res.CaptionsPath})
	}
	if res.RunDir != "" {
		rows = append(rows, []string{"run dir", res.RunDir})
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-9s %s\n", r[0]+":", filepath.ToSlash(r[1]))
	}
}
