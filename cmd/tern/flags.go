// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports --model, --agent, --base-url, --dir, --verbose, --version

package main

import "flag"

type cliArgs struct {
	model   string
	agent   string
	baseURL string
	dir     string
	verbose bool
	version bool
}

func parseFlags() cliArgs {
	var args cliArgs

	flag.StringVar(&args.model, "model", "", "Model to use for new sessions")
	flag.StringVar(&args.agent, "agent", "", "Agent to use for new sessions")
	flag.StringVar(&args.baseURL, "base-url", "", "Backend address (overrides config)")
	flag.StringVar(&args.dir, "dir", "", "Working directory for the session")
	flag.BoolVar(&args.verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&args.version, "version", false, "Show version and exit")

	flag.Parse()
	return args
}
