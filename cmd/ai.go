package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lupinelegend/f1-radio-archive/cmd/factory"
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "OpenAI connectivity checks",
}

var aiPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "List the models visible to the configured API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := loadServices(cmd.Context(), factory.Options{NeedOpenAI: true, SkipDatabase: true})
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		models, err := svc.OpenAI.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("OpenAI API is not reachable: %w", err)
		}

		cmd.Printf("OpenAI API reachable at %s (%d models)\n", svc.Config.OpenAIBaseURL, len(models))
		for _, m := range models {
			if m.ID == svc.Config.ChatModel || m.ID == svc.Config.TranscriptionModel {
				cmd.Printf("  ✓ %s\n", m.ID)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(aiCmd)
	aiCmd.AddCommand(aiPingCmd)
}
