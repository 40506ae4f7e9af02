package main

import (
	"os"

	"github.com/logisq/xyronq/cmd/xyronq/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
