package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/anomredux/gemini-replay/internal/config"
	"github.com/anomredux/gemini-replay/internal/token"
)

// version is set by goreleaser via ldflags.
var version = "dev"

func main() {
	var (
		configPath  = flag.String("config", config.DefaultPath(), "config file path")
		output      = flag.String("output", "", "canonical token destination (default from config)")
		watch       = flag.Bool("watch", false, "keep watching for a token file to appear")
		timeout     = flag.Int("timeout", 0, "watch timeout in seconds (default from config)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("token-extract", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	outPath := *output
	if outPath == "" {
		outPath = cfg.Capture.TokenFile
	}

	// An already-present credential wins over waiting for a new one.
	if path, ok := token.NewLocator().Find(); ok {
		fmt.Printf("Found credential at %s\n", path)
		if _, err := token.ExtractFile(path, outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Token saved to %s\n", outPath)
		return
	}

	if !*watch {
		fmt.Fprintln(os.Stderr, "No credential found. Run the upstream tool to sign in, or pass -watch to wait for one.")
		os.Exit(1)
	}

	watchTimeout := *timeout
	if watchTimeout <= 0 {
		watchTimeout = cfg.Watch.Timeout
	}

	fmt.Printf("Watching for credential files (timeout %ds)...\n", watchTimeout)
	w := token.NewWatcher(outPath, time.Duration(cfg.Watch.Interval)*time.Second)
	path, ok := w.Watch(time.Duration(watchTimeout) * time.Second)
	if !ok {
		fmt.Fprintln(os.Stderr, "Timed out waiting for a credential file.")
		os.Exit(1)
	}
	fmt.Printf("Credential detected at %s\nToken saved to %s\n", path, outPath)
}
