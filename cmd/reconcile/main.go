package main

import (
	"context"
	"fmt"
	"os"

	"github.com/storefront/backend/internal/interfaces/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
