package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/muesli/termenv"

	"github.com/lox/holdem-rooms/internal/server"
)

// ListRoomsCommand prints the open rooms and exits
type ListRoomsCommand struct {
}

func (cmd *ListRoomsCommand) Run(flags *GlobalFlags) error {
	wsClient, cfg, _, err := SetupClient(flags)
	if err != nil {
		return err
	}
	defer func() { _ = wsClient.Disconnect() }()

	if err := wsClient.ListRooms(); err != nil {
		return fmt.Errorf("failed to request room list: %w", err)
	}

	msg, err := wsClient.WaitForMessage(server.MessageTypeRoomList, cfg.GetRequestTimeout())
	if err != nil {
		return err
	}

	var data server.RoomListData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fmt.Errorf("failed to parse room list: %w", err)
	}

	// Styling degrades to plain text when stdout is not a terminal
	out := termenv.NewOutput(os.Stdout)

	if len(data.Rooms) == 0 {
		fmt.Fprintln(out, out.String("No open rooms. Joining any room id creates it.").Faint())
		return nil
	}

	fmt.Fprintln(out, out.String("Open rooms:").Bold())
	for _, room := range data.Rooms {
		fmt.Fprintf(out, "  %s: %d/%d players, big blind %d\n",
			out.String(room.RoomID).Foreground(out.Color("#04B575")).Bold(),
			room.PlayerCount, room.MaxPlayers, room.BigBlind)
	}
	return nil
}
