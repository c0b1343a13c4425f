package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/pushgate-project/pushgate-go/pkg/log"
)

// runView prints events in a human-readable line format.
func runView(args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	connID := fs.String("conn-id", "", "filter by connection ID prefix")
	minLevel := fs.String("min-level", "", "minimum level: info, warn, error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: pushgate-log view [flags] <file.pglog>")
	}

	filter := log.Filter{}
	if *minLevel != "" {
		lvl, err := parseLevel(*minLevel)
		if err != nil {
			return err
		}
		filter.MinLevel = &lvl
	}

	reader, err := log.NewFilteredReader(fs.Arg(0), filter)
	if err != nil {
		return err
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}
		// Prefix match lets users paste the short form shown in output.
		if *connID != "" && !strings.HasPrefix(event.ConnectionID, *connID) {
			continue
		}
		fmt.Println(formatEvent(event))
	}
}

// formatEvent renders one event as a single line.
func formatEvent(event log.Event) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %-5s [%s]",
		event.Timestamp.Format("15:04:05.000000"),
		event.Level,
		shortID(event.ConnectionID),
	)
	if event.RemoteAddr != "" {
		fmt.Fprintf(&b, " %s", event.RemoteAddr)
	}

	switch {
	case event.Attempt != nil:
		a := event.Attempt
		fmt.Fprintf(&b, " attempt %d/%d %s", a.Attempt+1, a.Budget+1, a.Outcome)
		if a.RetryIn > 0 {
			fmt.Fprintf(&b, " retry in %s", a.RetryIn)
		}
		if a.Reason != "" {
			fmt.Fprintf(&b, ": %s", a.Reason)
		}
	case event.StateChange != nil:
		s := event.StateChange
		fmt.Fprintf(&b, " %s -> %s", s.OldState, s.NewState)
		if s.Reason != "" {
			fmt.Fprintf(&b, " (%s)", s.Reason)
		}
	case event.Probe != nil:
		fmt.Fprintf(&b, " probe %s", event.Probe.Result)
		if event.Probe.Bytes > 0 {
			fmt.Fprintf(&b, " (%d bytes pending)", event.Probe.Bytes)
		}
	case event.Error != nil:
		fmt.Fprintf(&b, " error: %s", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(&b, " (%s)", event.Error.Context)
		}
	}

	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func parseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level: %s (use: info, warn, error)", s)
	}
}
