package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/stockpile/internal/kernel"
	"github.com/shashiranjanraj/stockpile/internal/server"
	"github.com/shashiranjanraj/stockpile/pkg/app"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
)

// stockpile serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the gRPC health server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return server.Run(ctx, a)
	},
}

// stockpile route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Handlers are never invoked, so no database is needed.
		k := kernel.NewHTTPKernel(&app.App{Tokens: auth.NewManager("", 0)})

		infos := k.Router().Routes()
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No named routes registered.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
