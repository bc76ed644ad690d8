package main

import (
	"os"

	"github.com/agentgateway/chateval/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
