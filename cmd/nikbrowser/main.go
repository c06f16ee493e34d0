package main

import (
	"context"
	"os"

	"github.com/nikbrowser/nikbrowser/internal/client/cli"
)

func main() {
	os.Exit(cli.Main(context.Background()))
}
