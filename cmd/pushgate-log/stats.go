package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/pushgate-project/pushgate-go/pkg/log"
)

// runStats summarizes a log file.
func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: pushgate-log stats <file.pglog>")
	}

	reader, err := log.NewReader(fs.Arg(0))
	if err != nil {
		return err
	}
	defer reader.Close()

	var (
		total       int
		byLevel     = map[log.Level]int{}
		connections = map[string]struct{}{}
		attempts    int
		failures    int
		successes   int
		probes      int
		first, last time.Time
	)

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}

		total++
		byLevel[event.Level]++
		if event.ConnectionID != "" {
			connections[event.ConnectionID] = struct{}{}
		}
		if first.IsZero() || event.Timestamp.Before(first) {
			first = event.Timestamp
		}
		if event.Timestamp.After(last) {
			last = event.Timestamp
		}

		switch {
		case event.Attempt != nil:
			switch event.Attempt.Outcome {
			case log.AttemptStarted:
				attempts++
			case log.AttemptFailed:
				failures++
			case log.AttemptSucceeded:
				successes++
			}
		case event.Probe != nil:
			probes++
		}
	}

	fmt.Printf("Events:       %d\n", total)
	fmt.Printf("  info:       %d\n", byLevel[log.LevelInfo])
	fmt.Printf("  warn:       %d\n", byLevel[log.LevelWarn])
	fmt.Printf("  error:      %d\n", byLevel[log.LevelError])
	fmt.Printf("Connections:  %d\n", len(connections))
	fmt.Printf("Attempts:     %d (%d failed, %d succeeded)\n", attempts, failures, successes)
	fmt.Printf("Probes:       %d\n", probes)
	if !first.IsZero() {
		fmt.Printf("Time span:    %s (%s - %s)\n",
			last.Sub(first).Round(time.Millisecond),
			first.Format(time.RFC3339),
			last.Format(time.RFC3339),
		)
	}

	return nil
}
