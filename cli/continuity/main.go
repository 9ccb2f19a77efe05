package main

import (
	"os"

	continuitycmder "github.com/novelforge/continuity/cmd/continuity"
)

func main() {
	cmd := continuitycmder.NewContinuityCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
