package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"rcsarchive/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		if services.IsSetupFailure(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
