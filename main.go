package main

import (
	"os"

	"github.com/saurav/teachback/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
