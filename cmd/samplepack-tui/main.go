package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/sample-pack-maker/internal/config"
	"github.com/handiism/sample-pack-maker/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file (.json or .toml)")
	flag.Parse()

	path := *configFlag
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}

	settings := config.DefaultSettings()
	if path != "" {
		var err error
		settings, err = config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
