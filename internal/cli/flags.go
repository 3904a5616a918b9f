package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/jumpcut/internal/config"
)

// planFlags are the detector and render overrides shared by edit and plan.
type planFlags struct {
	out            string
	output         string
	noFillers      bool
	noRepetitions  bool
	noSilence      bool
	removeTangents bool
	useLLM         bool
	minSilence     float64
	copyCodec      bool
	captions       bool
	workers        int
}

func (f *planFlags) register(cmd *cobra.Command, withRender bool) {
	fs := cmd.Flags()
	fs.StringVar(&f.out, "out", "", "Output directory for run artifacts")
	fs.BoolVar(&f.noFillers, "no-fillers", false, "Keep filler words")
	fs.BoolVar(&f.noRepetitions, "no-repetitions", false, "Keep repeated words")
	fs.BoolVar(&f.noSilence, "no-silence", false, "Keep long silences")
	fs.BoolVar(&f.removeTangents, "remove-tangents", false, "Remove off-topic passages (requires --use-llm)")
	fs.BoolVar(&f.useLLM, "use-llm", false, "Allow calls to the configured LLM")
	fs.Float64Var(&f.minSilence, "min-silence", 0, "Shortest pause in seconds that is cut")
	if !withRender {
		return
	}
	fs.StringVarP(&f.output, "output", "o", "", "Edited video path (default <run>/edited<ext>)")
	fs.BoolVar(&f.copyCodec, "copy-codec", false, "Stream copy instead of re-encoding (cuts snap to keyframes)")
	fs.BoolVar(&f.captions, "captions", false, "Write an SRT sidecar retimed to the edited video")
	fs.IntVar(&f.workers, "workers", 0, "Concurrent segment extractions")
}

// apply copies explicitly set flags over cfg and revalidates it.
func (f *planFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("out") {
		dir, err := config.ExpandPath(f.out)
		if err != nil {
			return fmt.Errorf("--out: %w", err)
		}
		cfg.Paths.OutDir = dir
	}
	if changed("no-fillers") {
		cfg.Detect.RemoveFillers = !f.noFillers
	}
	if changed("no-repetitions") {
		cfg.Detect.RemoveRepetitions = !f.noRepetitions
	}
	if changed("no-silence") {
		cfg.Detect.RemoveSilence = !f.noSilence
	}
	if changed("remove-tangents") {
		cfg.Detect.RemoveTangents = f.removeTangents
	}
	if changed("use-llm") {
		cfg.Detect.UseLLM = f.useLLM
	}
	if changed("min-silence") {
		cfg.Detect.MinSilence = f.minSilence
	}
	applyRenderFlags(cmd, cfg, f.copyCodec, f.workers)
	if changed("captions") {
		cfg.Render.Captions = f.captions
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func applyRenderFlags(cmd *cobra.Command, cfg *config.Config, copyCodec bool, workers int) {
	if cmd.Flags().Changed("copy-codec") {
		cfg.Render.CopyCodec = copyCodec
	}
	if cmd.Flags().Changed("workers") {
		cfg.Render.Workers = workers
	}
}
