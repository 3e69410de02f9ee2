package main

import (
	"fmt"
	"os"

	"github.com/duesbook/duesbook/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+commands.UserMessage(err))
		os.Exit(1)
	}
}
