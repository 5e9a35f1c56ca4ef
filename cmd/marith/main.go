package main

import (
	"os"

	"marith/cmd/marith/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
