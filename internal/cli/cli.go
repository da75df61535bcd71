// Package cli parses the command lines of the two binaries and maps
// them onto app configurations.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/gswsys/panoform/internal/app"
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

// ParseConvert processes the converter's command-line arguments. It
// returns a populated Config, a boolean indicating the program should
// exit cleanly, or an ExitError.
func ParseConvert(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("panoform", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
panoform - Convert firewall XML exports into Terraform configuration.

Usage:
  panoform [options] EXPORT_XML

Arguments:
  EXPORT_XML
    Path to the XML configuration export to convert.

Options:
`)
		flagSet.PrintDefaults()
	}

	outputDirFlag := flagSet.String("output-dir", "terraform_output", "Directory for the generated Terraform files.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat, logLevel, err := validateLogging(*logFormatFlag, *logLevelFlag)
	if err != nil {
		return nil, false, err
	}

	config, err := app.NewConfig(app.Config{
		InputPath: flagSet.Arg(0),
		OutputDir: *outputDirFlag,
		LogFormat: logFormat,
		LogLevel:  logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}

// ParseSplit processes the splitter's command-line arguments.
func ParseSplit(args []string, output io.Writer) (*app.SplitConfig, bool, error) {
	flagSet := flag.NewFlagSet("pansplit", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
pansplit - Split a management-server export into per-device-group files.

Usage:
  pansplit [options] EXPORT_XML

Arguments:
  EXPORT_XML
    Path to the management-server XML export to partition.

Options:
`)
		flagSet.PrintDefaults()
	}

	outputDirFlag := flagSet.String("output-dir", "split_configs", "Directory for the per-device-group XML files.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat, logLevel, err := validateLogging(*logFormatFlag, *logLevelFlag)
	if err != nil {
		return nil, false, err
	}

	config, err := app.NewSplitConfig(app.SplitConfig{
		InputPath: flagSet.Arg(0),
		OutputDir: *outputDirFlag,
		LogFormat: logFormat,
		LogLevel:  logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}

func validateLogging(format, level string) (string, string, error) {
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return "", "", &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	level = strings.ToLower(level)
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return "", "", &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	return format, level, nil
}
