package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lupinelegend/f1-radio-archive/cmd/factory"
	"github.com/lupinelegend/f1-radio-archive/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sync and transcription HTTP endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, cleanup, err := loadServices(ctx, factory.Options{NeedOpenAI: true})
		if err != nil {
			return err
		}
		defer cleanup()

		router := server.NewRouter(server.Dependencies{
			Sync:          svc.Sync,
			Transcription: svc.Transcription,
			Log:           svc.Log,
			Gatherer:      svc.Registry,
		})

		return server.Run(ctx, serveAddr, router, svc.Log)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
