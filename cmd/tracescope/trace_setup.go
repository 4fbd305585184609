package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"tracescope/internal/config"
	"tracescope/internal/optrace"
)

// setupTracing builds the operation tracer from the optrace flags and the
// [optrace] section. The cleanup function dumps the ring buffer to stderr
// when the command failed, then flushes and closes the tracer.
func setupTracing(cmd *cobra.Command, cfg config.Config) (optrace.Tracer, func(failed bool), error) {
	output := stringSetting(cmd, "optrace", cfg.Optrace.Output)
	level, err := optrace.ParseLevel(stringSetting(cmd, "optrace-level", cfg.Optrace.Level))
	if err != nil {
		return nil, nil, err
	}
	if level == optrace.LevelOff {
		return optrace.Nop, func(bool) {}, nil
	}

	mode, err := optrace.ParseMode(stringSetting(cmd, "optrace-mode", cfg.Optrace.Mode))
	if err != nil {
		return nil, nil, err
	}
	format, err := optrace.ParseFormat(stringSetting(cmd, "optrace-format", cfg.Optrace.Format), output)
	if err != nil {
		return nil, nil, err
	}
	ringSize, _ := cmd.Flags().GetInt("optrace-ring-size")
	if f := cmd.Flags().Lookup("optrace-ring-size"); f != nil && !f.Changed && cfg.Optrace.RingSize > 0 {
		ringSize = cfg.Optrace.RingSize
	}

	tracer, err := optrace.New(optrace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "create operation tracer")
	}

	cleanup := func(failed bool) {
		if ring, ok := optrace.RingOf(tracer); ok && failed {
			fmt.Fprintln(os.Stderr, "optrace: last operations before the failure:") //nolint:errcheck
			if err := ring.Dump(os.Stderr, format); err != nil {
				fmt.Fprintf(os.Stderr, "optrace: dump error: %v\n", err) //nolint:errcheck
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "optrace: flush error: %v\n", err) //nolint:errcheck
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "optrace: close error: %v\n", err) //nolint:errcheck
		}
	}
	return tracer, cleanup, nil
}
