// Command gonav runs waypoint navigation experiments on the reference
// arena simulator
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is not an error
	_ = godotenv.Load()

	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
