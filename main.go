package main

import (
	"os"

	"github.com/blink-new/studytrack/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
