package main

import (
	"os"

	"github.com/spigell/school-matcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
