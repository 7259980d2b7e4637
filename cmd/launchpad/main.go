package main

import (
	"log"

	"github.com/MrSnakeDoc/launchpad/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("❌ launchpad: %v", err)
	}
}
