package main

import (
	"os"

	"github.com/lysyi3m/wiki-api-connector/app/commands"
)

func main() {
	os.Exit(commands.Run(os.Args[1:]))
}
