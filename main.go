package main

import (
	"os"

	"github.com/homielab/homie/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
