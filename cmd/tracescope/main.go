package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tracescope/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tracescope",
	Short: "Navigate program execution traces as nested scopes",
	Long: `tracescope rebuilds the call structure of an execution trace, lets you
step through its points and turns edited variable values into goals for an
advice engine.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupApp,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to tracescope.toml (default: search upwards from the working directory)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("log-level", "warn", "log level (debug|info|warn|error|silent)")
	pf.String("log-format", "text", "log format (text|json)")
	pf.CountP("verbose", "v", "raise the log level (-v info, -vv debug)")
	pf.Bool("quiet", false, "suppress logs and non-essential output")
	pf.Bool("timings", false, "print load phase timings to stderr")
	pf.String("optrace", "", "write the operation trace to this file (\"-\" for stderr)")
	pf.String("optrace-level", "off", "operation trace level (off|error|session|command|debug)")
	pf.String("optrace-mode", "stream", "operation trace storage (stream|ring|both)")
	pf.String("optrace-format", "auto", "operation trace format (auto|text|ndjson)")
	pf.Int("optrace-ring-size", 4096, "ring buffer capacity for ring and both modes")
}

// main runs the root command. Errors are printed with their hints and exit
// with status 1.
func main() {
	err := rootCmd.Execute()
	closeApp(err)
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	if !isTerminal(os.Stdout) {
		return 0
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}
