// listing-service
//
// Content listing and filtering engine for the careers site: positions,
// projects, posts and the applications board with its status workflow.
//
//	serve    REST + gRPC + expired-position sweep
//	migrate  apply the schema
//	sweep    close expired positions once
//	browse   query a running instance
//	watch    print application workflow events
//	app      drive the application workflow
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[listing-service] %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "listing-service",
		Short:         "Content listing engine and applications board",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
				With("service", "listing-service"))
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(serveCommand(), migrateCommand(), sweepCommand(), watchCommand(), browseCommand(), appCommand())
	return root
}
