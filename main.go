package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// METRO_* settings may come from a .env next to the audio folder
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: .env not loaded: %v\n", err)
	}

	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
