package main

import (
	"os"

	"github.com/dshills/crucible/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
