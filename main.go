package main

import (
	"os"

	"github.com/1ndex13/logistic-app/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
