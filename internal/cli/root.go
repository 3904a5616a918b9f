package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/jumpcut/internal/config"
	"github.com/forPelevin/jumpcut/internal/logging"
)

type commandContext struct {
	configFlag string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log *slog.Logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	root := &cobra.Command{
		Use:           "jumpcut",
		Short:         "Cut filler words, repetitions, and dead air out of a recording",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	root.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&ctx.logFormat, "log-format", "", "Log format (console, json)")

	root.AddCommand(newEditCommand(ctx))
	root.AddCommand(newPlanCommand(ctx))
	root.AddCommand(newRenderCommand(ctx))
	root.AddCommand(newHistoryCommand(ctx))
	root.AddCommand(newCheckCommand(ctx))
	return root
}

// load reads the configuration once per invocation and builds the logger.
// Command specific overrides are applied by the caller before Validate.
func (c *commandContext) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if c.cfg != nil {
		return c.cfg, c.log, nil
	}
	cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if c.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(c.logLevel))
	}
	if c.logFormat != "" {
		cfg.Logging.Format = strings.ToLower(strings.TrimSpace(c.logFormat))
	}
	log, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	c.cfg, c.log = cfg, log
	return cfg, log, nil
}
