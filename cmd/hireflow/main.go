package main

import (
	"os"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/adapters/driving/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
