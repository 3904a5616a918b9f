package config

import (
	"errors"
	"fmt"
)

// ErrTangentsRequireLLM is returned when tangent removal is requested without
// enabling the LLM collaborator.
var ErrTangentsRequireLLM = errors.New("tangent removal requires --use-llm")

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.PlanConfig().Validate(); err != nil {
		return fmt.Errorf("detect: %w", err)
	}
	if c.Detect.RemoveTangents && !c.Detect.UseLLM {
		return ErrTangentsRequireLLM
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRender() error {
	if c.Render.Workers < 1 {
		return fmt.Errorf("render.workers must be >= 1, got %d", c.Render.Workers)
	}
	if c.Render.StepTimeoutSeconds <= 0 {
		return errors.New("render.step_timeout_seconds must be positive")
	}
	if c.Render.VideoCRF < 0 || c.Render.VideoCRF > 51 {
		return fmt.Errorf("render.video_crf must be within [0,51], got %d", c.Render.VideoCRF)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.Detect.UseLLM && c.Detect.RemoveTangents && c.LLM.APIKey == "" {
		return errors.New("llm: OPENROUTER_API_KEY is required for tangent removal (set it in .env)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
