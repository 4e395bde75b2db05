package main

import (
	"os"

	"github.com/sandyviper/kite-viper-bot/cmd/viper-bot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
