package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jurissearch-backend/service"
)

var suggestionsCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "List suggested research topics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, topic := range service.SuggestedTopics() {
			fmt.Fprintln(cmd.OutOrStdout(), topic)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestionsCmd)
}
