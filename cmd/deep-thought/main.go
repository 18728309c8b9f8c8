// Package main provides the deep-thought CLI.
package main

import (
	"fmt"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("deep-thought %s\n", version)
		return
	}

	fmt.Println("deep-thought - forward-mode autodiff neural networks for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("")
	fmt.Println("See examples/xor for a full training loop.")
}
