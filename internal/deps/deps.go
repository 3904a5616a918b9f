package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/forPelevin/jumpcut/internal/config"
)

// ErrMissingBinary is returned by Require when a mandatory dependency is
// unavailable.
var ErrMissingBinary = errors.New("missing required dependency")

// Requirement defines an external dependency jumpcut relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// File marks requirements that are data files (models) rather than
	// executables.
	File bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		case req.File:
			if info, err := os.Stat(cmd); err != nil || info.IsDir() {
				status.Detail = fmt.Sprintf("file %q not found", cmd)
			} else {
				status.Available = true
			}
		default:
			if _, err := exec.LookPath(cmd); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
			} else {
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}

// Require fails with ErrMissingBinary when any non-optional requirement is
// unavailable.
func Require(requirements []Requirement) error {
	var missing []string
	for _, s := range CheckBinaries(requirements) {
		if !s.Available && !s.Optional {
			missing = append(missing, fmt.Sprintf("%s (%s)", s.Name, s.Detail))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingBinary, strings.Join(missing, ", "))
	}
	return nil
}

// Render lists what re-rendering a saved plan needs.
func Render(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "Trims and concatenates segments"},
	}
}

// Edit lists what transcribing and planning an input needs.
func Edit(cfg *config.Config) []Requirement {
	return append(Render(cfg),
		Requirement{Name: "FFprobe", Command: cfg.Tools.FFprobe, Description: "Probes media duration and streams"},
		Requirement{Name: "whisper.cpp", Command: cfg.Tools.WhisperBin, Description: "Transcribes audio with word timings"},
		Requirement{Name: "Whisper model", Command: cfg.Tools.WhisperModel, Description: "ggml model used by whisper.cpp", File: true},
	)
}
