package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"tracescope/internal/notify"
	"tracescope/internal/observ"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	hintLabel    = color.New(color.FgCyan)
	warningLabel = color.New(color.FgYellow, color.Bold)
	okLabel      = color.New(color.FgGreen)
)

// printError writes err and every hint attached to it.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", errorLabel.Sprint("error:"), err) //nolint:errcheck
	for _, h := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "%s %s\n", hintLabel.Sprint("hint:"), h) //nolint:errcheck
	}
}

// alertPrinter reports controller alerts on w and in the log.
func alertPrinter(w io.Writer, log *slog.Logger) notify.Alerter {
	return notify.Funcs{OnAlert: func(a notify.Alert) {
		log.Warn("alert", "severity", a.Severity.String(), "message", a.Message, "code", a.Details.Code)
		fmt.Fprintf(w, "%s %s\n", warningLabel.Sprintf("%s:", a.Severity), a.Message) //nolint:errcheck
		if a.Details.Code != "" {
			fmt.Fprintf(w, "  %s\n", a.Details.Code) //nolint:errcheck
		}
	}}
}

func printTimings(w io.Writer, timer *observ.Timer) {
	if len(timer.Report().Phases) == 0 {
		return
	}
	fmt.Fprint(w, timer.Summary()) //nolint:errcheck
}
