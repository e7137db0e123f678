package main

import (
	"os"

	"github.com/censys-research/uap2clickhouse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
