package main

import (
	"os"

	"github.com/dkathuria/codeaudit/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
