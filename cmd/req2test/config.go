package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/req2test/internal/config"
	"github.com/jonathan/req2test/internal/types"
)

// override copies v into dst when the named flag was set explicitly.
func override[T any](cmd *cobra.Command, name string, dst *T, v T) {
	if cmd.Flags().Changed(name) {
		*dst = v
	}
}

// resolveConfig layers flag overrides onto the file and environment config, fills defaults
// and validates the result.
func resolveConfig(cmd *cobra.Command, apply func(cfg *config.Config)) (config.Config, error) {
	cfg := baseConfig
	if apply != nil {
		apply(&cfg)
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func reportType(cfg config.Config) types.ReportType {
	return types.ReportType(cfg.ReportType)
}
