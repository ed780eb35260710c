package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebox/internal/server"
	"github.com/aretw0/notebox/pkg/chat"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long: `Serve exposes notes, tags, notebooks and the chat assistant over a local
JSON API until interrupted. Changes made to the store by other writers are
picked up automatically.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		server.SetMode(cfg.Server.RunMode)
		client := chat.NewClient(cfg.ChatClientConfig(), chat.WithLogger(logger))
		srv := server.New(repo, client, server.WithLogger(logger.With("component", "api")))
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}
