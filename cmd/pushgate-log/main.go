// Command pushgate-log is a tool for viewing connection log files.
//
// Log files are created by the protocol logging infrastructure when a
// manager is configured with a log.FileLogger (for example via
// pushgate-probe's -protocol-log flag).
//
// Usage:
//
//	pushgate-log <command> [flags] <file.pglog>
//
// Commands:
//
//	view     View log file in human-readable format
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	pushgate-log view probe.pglog
//
//	# View only events of one connection cycle
//	pushgate-log view -conn-id c7f9d2aa probe.pglog
//
//	# View warnings and errors only
//	pushgate-log view -min-level warn probe.pglog
//
//	# Show statistics
//	pushgate-log stats probe.pglog
package main

import (
	"fmt"
	"os"
)

const usage = `pushgate-log - Connection Log Analyzer

Usage:
  pushgate-log <command> [flags] <file.pglog>

Commands:
  view     View log file in human-readable format
  stats    Show statistics about the log file

Use "pushgate-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "view":
		err = runView(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
