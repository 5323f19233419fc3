package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Matchmaking rooms",
	}

	cmd.AddCommand(newRoomsListCmd())
	cmd.AddCommand(newRoomsCreateCmd())
	cmd.AddCommand(newRoomsJoinCmd())
	cmd.AddCommand(newRoomsWatchCmd())
	cmd.AddCommand(newRoomsRemoveCmd())

	return cmd
}

func newRoomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms waiting for a guest",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Room
			if err := client.Get(cmd.Context(), "/api/v1/rooms", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newRoomsCreateCmd() *cobra.Command {
	var deckID int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Host a room and wait for an opponent",
		Long: `Open the realtime channel, create a room with the given deck and stay
connected until a guest joins and the game starts.

Press Ctrl+C to give up waiting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChannel(cmd.Context(), "createRoom", map[string]int64{"deckId": deckID})
		},
	}

	cmd.Flags().Int64Var(&deckID, "deck", 0, "Deck id (required)")
	_ = cmd.MarkFlagRequired("deck")

	return cmd
}

func newRoomsJoinCmd() *cobra.Command {
	var deckID int64

	cmd := &cobra.Command{
		Use:   "join <roomId>",
		Short: "Join a waiting room and start the game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runChannel(cmd.Context(), "joinRoom", map[string]int64{"roomId": roomID, "deckId": deckID})
		},
	}

	cmd.Flags().Int64Var(&deckID, "deck", 0, "Deck id (required)")
	_ = cmd.MarkFlagRequired("deck")

	return cmd
}

func newRoomsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream room list updates",
		Long: `Open the realtime channel and print every event received.

Events include:
  - roomsList: Reply to the initial request
  - roomsListUpdated: A room was created, started or removed

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchChannel(cmd.Context())
		},
	}
}

func newRoomsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <roomId>",
		Short: "End a room you host or play in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := client.Delete(cmd.Context(), fmt.Sprintf("/api/v1/rooms/%d", id)); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Room %d removed", id))
			return nil
		},
	}
}

// runChannel sends one request and prints events until the game starts
// or the server reports an error
func runChannel(ctx context.Context, event string, data any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ch, err := DialChannel(ctx, cfg.ServerURL, cfg.Token)
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	go func() {
		<-ctx.Done()
		_ = ch.Close()
	}()

	if err := ch.Send(event, data); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	for {
		evt, err := ch.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("channel closed: %w", err)
		}
		out.Print(evt)

		switch evt.Event {
		case "gameStarted":
			return nil
		case "errorMessage":
			var msg string
			_ = json.Unmarshal(evt.Data, &msg)
			return errors.New(msg)
		}
	}
}

func watchChannel(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ch, err := DialChannel(ctx, cfg.ServerURL, cfg.Token)
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	go func() {
		<-ctx.Done()
		_ = ch.Close()
	}()

	if err := ch.Send("getRooms", struct{}{}); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	for {
		evt, err := ch.Next()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("channel closed: %w", err)
		}
		out.Print(evt)
	}
}
