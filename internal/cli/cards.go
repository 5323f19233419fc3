package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Browse the card catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every card",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Card
			if err := client.Get(cmd.Context(), "/api/v1/cards", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var result Card
			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/cards/%d", id), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	return cmd
}
