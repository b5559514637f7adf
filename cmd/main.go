package main

import (
	"os"
)

func main() {
	if err := newApp(os.Stdin).rootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
