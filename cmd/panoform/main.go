package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gswsys/panoform/internal/app"
	"github.com/gswsys/panoform/internal/cli"
)

// main is the entrypoint for the panoform converter.
func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and
// error handling.
func run(outW io.Writer, args []string) error {
	config, shouldExit, err := cli.ParseConvert(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}
	return app.NewConverter(outW, config).Run(context.Background())
}
