package main

import (
	"os"

	"github.com/diwise/item-drive/internal/pkg/presentation/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
