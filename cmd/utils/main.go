package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/appetiteclub/lifecycle/cmd/utils/internal/commands"
	"github.com/aquamarinepk/aqm"
)

const (
	appName    = "lifecycle-utils"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		commands.Usage(os.Stderr, appName)
		os.Exit(2)
	}

	name := os.Args[1]
	switch name {
	case "version":
		fmt.Printf("%s %s\n", appName, appVersion)
		return
	case "help", "-h", "--help":
		commands.Usage(os.Stdout, appName)
		return
	}

	cmd, ok := commands.Lookup(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		commands.Usage(os.Stderr, appName)
		os.Exit(2)
	}

	config, err := aqm.LoadConfig("UTILS", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := aqm.NewLogger(logLevel).With("command", cmd.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Run(ctx, config, logger); err != nil {
		log.Fatalf("%s failed: %v", cmd.Name, err)
	}
	logger.Info("done")
}
