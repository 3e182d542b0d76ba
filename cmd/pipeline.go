package cmd

import (
	"github.com/lupinelegend/f1-radio-archive/cmd/pipeline"
)

func init() {
	rootCmd.AddCommand(pipeline.NewSyncCommand(loadServices))
	rootCmd.AddCommand(pipeline.NewTranscribeCommand(loadServices))
	rootCmd.AddCommand(pipeline.NewTagCommand(loadServices))
	rootCmd.AddCommand(pipeline.NewCategoriesCommand(loadServices))
	rootCmd.AddCommand(pipeline.NewStatusCommand(loadServices))
	rootCmd.AddCommand(pipeline.NewCleanupCommand(loadServices))
}
