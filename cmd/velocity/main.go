package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benjaminschreck/go-velocity/internal/cli"
	"github.com/benjaminschreck/go-velocity/pkg/velocity"
	"github.com/benjaminschreck/go-velocity/pkg/velocity/hclctx"
)

const version = "0.1.0"

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run holds the command logic; output goes to outW and logs to errW.
func run(outW, errW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	switch opts.Command {
	case cli.CommandVersion:
		fmt.Fprintf(outW, "velocity version %s\n", version)
		return nil
	case cli.CommandRender:
		return render(outW, errW, opts)
	default:
		return &cli.ExitError{Code: 2, Message: "unknown command: " + opts.Command}
	}
}

func render(outW, errW io.Writer, opts *cli.Options) error {
	config, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger := velocity.NewLoggerWithFormat(errW, velocity.ParseLogLevel(config.LogLevel), config.LogFormat)
	velocity.SetLogger(logger)

	ctx, err := loadContext(opts.ContextPath)
	if err != nil {
		return err
	}

	engine := velocity.New(velocity.WithConfig(config), velocity.WithLogger(logger))
	out, err := engine.RenderFile(opts.TemplatePath, ctx)
	if err != nil {
		return err
	}

	if opts.OutputPath == "" {
		_, err = io.WriteString(outW, out)
		return err
	}
	if err := os.WriteFile(opts.OutputPath, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write output %s: %w", opts.OutputPath, err)
	}
	logger.WithField("bytes", len(out)).Info("Wrote %s", opts.OutputPath)
	return nil
}

// loadConfig layers the config file and then command-line flags over the
// environment configuration.
func loadConfig(opts *cli.Options) (*velocity.Config, error) {
	config := velocity.ConfigFromEnvironment()
	if opts.ConfigPath != "" {
		loaded, err := velocity.LoadConfigFile(opts.ConfigPath, config)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	if opts.LogLevel != "" {
		config.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		config.LogFormat = opts.LogFormat
	}
	if err := config.Validate(); err != nil {
		return nil, &cli.ExitError{Code: 2, Message: "invalid configuration: " + err.Error()}
	}
	return config, nil
}

// loadContext reads a .hcl or JSON context file. No path means an empty context.
func loadContext(path string) (velocity.Context, error) {
	if path == "" {
		return velocity.NewContext(), nil
	}
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return hclctx.LoadFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read context %s: %w", path, err)
	}
	ctx, err := velocity.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load context %s: %w", path, err)
	}
	return ctx, nil
}
