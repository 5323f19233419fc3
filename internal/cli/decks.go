package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newDecksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decks",
		Short: "Manage your decks",
	}

	cmd.AddCommand(newDecksCreateCmd())
	cmd.AddCommand(newDecksListCmd())
	cmd.AddCommand(newDecksGetCmd())
	cmd.AddCommand(newDecksUpdateCmd())
	cmd.AddCommand(newDecksDeleteCmd())

	return cmd
}

func newDecksCreateCmd() *cobra.Command {
	var name, cards string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a deck of exactly 10 cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDList(cards)
			if err != nil {
				return err
			}

			req := map[string]any{"name": name, "cards": ids}
			var result Deck
			if err := client.Post(cmd.Context(), "/api/v1/decks", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Deck name (required)")
	cmd.Flags().StringVar(&cards, "cards", "", "Comma separated card ids (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("cards")

	return cmd
}

func newDecksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your decks",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Deck
			if err := client.Get(cmd.Context(), "/api/v1/decks/mine", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newDecksGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one of your decks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var result Deck
			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/decks/%d", id), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newDecksUpdateCmd() *cobra.Command {
	var name, cards string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a deck or replace its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			req := map[string]any{}
			if cmd.Flags().Changed("name") {
				req["name"] = name
			}
			if cmd.Flags().Changed("cards") {
				ids, err := parseIDList(cards)
				if err != nil {
					return err
				}
				req["cards"] = ids
			}
			if len(req) == 0 {
				return fmt.Errorf("nothing to update: pass --name and/or --cards")
			}

			var result Deck
			if err := client.Patch(cmd.Context(), fmt.Sprintf("/api/v1/decks/%d", id), req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New deck name")
	cmd.Flags().StringVar(&cards, "cards", "", "Comma separated card ids")

	return cmd
}

func newDecksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your decks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := client.Delete(cmd.Context(), fmt.Sprintf("/api/v1/decks/%d", id)); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Deck %d deleted", id))
			return nil
		},
	}
}

// parseID parses a positive integer argument
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// parseIDList parses "1,2,3"
func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return []int64{}, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := parseID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
