package main

import (
	"fmt"
	"os"

	"github.com/ostafen/gidefdisk/cmd/cmd"
	"github.com/ostafen/gidefdisk/internal/env"
)

func main() {
	PrintBanner()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func PrintBanner() {
	fmt.Printf("P112 FDISK (GIDE) %s\n", env.Version)
	fmt.Printf("Commit:     %s\n", env.CommitHash)
	fmt.Printf("Build Time: %s\n", env.BuildTime)
	fmt.Println()
}
