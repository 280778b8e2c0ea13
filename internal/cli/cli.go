// Package cli parses the velocity command line, validates user input and
// carries process exit codes.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Command names
const (
	CommandRender  = "render"
	CommandVersion = "version"
)

// Options is the parsed command line.
type Options struct {
	Command      string
	TemplatePath string
	ContextPath  string
	ConfigPath   string
	OutputPath   string
	// LogLevel and LogFormat are empty when not given on the command line.
	LogLevel  string
	LogFormat string
}

const usageText = `
velocity - render Velocity-style text templates.

Usage:
  velocity render [options] [TEMPLATE]
  velocity version

Arguments:
  TEMPLATE
    Path to the template file (alternative to -t).

Options:
`

// Parse processes command-line arguments. It returns the parsed Options, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	if len(args) == 0 {
		fmt.Fprint(output, usageText)
		return nil, true, nil
	}

	switch args[0] {
	case CommandVersion:
		return &Options{Command: CommandVersion}, false, nil
	case "help", "-h", "-help", "--help":
		fmt.Fprint(output, usageText)
		return nil, true, nil
	case CommandRender:
		return parseRender(args[1:], output)
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q; run 'velocity help' for usage", args[0])}
	}
}

func parseRender(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("velocity render", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usageText)
		flagSet.PrintDefaults()
	}

	templateFlag := flagSet.String("t", "", "Path to the template file.")
	contextFlag := flagSet.String("c", "", "Path to the context file (.json or .hcl).")
	configFlag := flagSet.String("config", "", "Path to an HCL engine configuration file.")
	outputFlag := flagSet.String("o", "", "Write the rendered output to this file instead of stdout.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error', 'off'.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	opts := &Options{
		Command:      CommandRender,
		TemplatePath: *templateFlag,
		ContextPath:  *contextFlag,
		ConfigPath:   *configFlag,
		OutputPath:   *outputFlag,
		LogLevel:     strings.ToLower(*logLevelFlag),
		LogFormat:    strings.ToLower(*logFormatFlag),
	}
	if opts.TemplatePath == "" && flagSet.NArg() > 0 {
		opts.TemplatePath = flagSet.Arg(0)
	}
	if opts.TemplatePath == "" {
		return nil, false, &ExitError{Code: 2, Message: "missing template: pass -t TEMPLATE or a positional path"}
	}

	if opts.LogFormat != "" && opts.LogFormat != "text" && opts.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error", "off":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', 'error', or 'off'"}
	}

	return opts, false, nil
}
