package main

import (
	"os"

	"ivrit/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
