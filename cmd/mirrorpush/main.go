package main

import (
	"os"

	"github.com/adhami/mirrorpush/cmd/mirrorpush/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
