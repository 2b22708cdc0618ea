package main

import (
	"context"
	"os"

	"github.com/soyunomas/ftools/internal/cli"
)

// version se inyecta con -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.New(version).Execute(context.Background()); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
