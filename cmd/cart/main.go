package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)

	if err := app.Run(os.Args); err != nil {
		code := 1

		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}

		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}

		os.Exit(code)
	}
}
