package main

import (
	"os"

	"github.com/jask/taskpad/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
