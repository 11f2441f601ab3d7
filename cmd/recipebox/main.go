package main

import (
	"os"

	"github.com/pageza/recipebox/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
