package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/holdem-rooms/internal/client"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/lox/holdem-rooms/internal/rooms"
	"github.com/lox/holdem-rooms/internal/server"
)

// SetupNetworkHandlers wires server messages into the TUI. Handlers
// decode, update the model, and append log lines; malformed payloads
// are dropped.
func SetupNetworkHandlers(wsClient *client.Client, model *Model) {
	wsClient.AddEventHandler(server.MessageTypeAuthResponse, func(msg *server.Message) {
		var data server.AuthResponseData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		if !data.Success {
			model.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Authentication failed: %s", data.Error)))
			return
		}

		wsClient.SetIdentity(data.PlayerID, data.Name)
		model.SetIdentity(data.PlayerID)
		model.AddLogEntry(fmt.Sprintf("Signed in as %s", data.PlayerID))

		model.notifyMessageCallback(server.MessageTypeAuthResponse)
	})

	wsClient.AddEventHandler(server.MessageTypeRoomJoined, func(msg *server.Message) {
		var data server.RoomJoinedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		wsClient.SetRoom(data.RoomID)
		model.SetRoom(data.RoomID)
		if data.State != nil {
			model.SetSnapshot(data.State)
		}

		model.AddLogEntry("")
		model.AddLogEntry(SuccessStyle.Render(fmt.Sprintf("Joined room %s", data.RoomID)))
		if data.State != nil && len(data.State.Players) < 2 {
			model.AddLogEntry(InfoStyle.Render("Waiting for another player. The hand starts shortly after the second join."))
		}

		model.notifyMessageCallback(server.MessageTypeRoomJoined)
	})

	wsClient.AddEventHandler(server.MessageTypeRoomLeft, func(msg *server.Message) {
		wsClient.SetRoom("")
		model.SetRoom("")
		model.AddLogEntry("Left room")

		model.notifyMessageCallback(server.MessageTypeRoomLeft)
	})

	wsClient.AddEventHandler(server.MessageTypeRoomList, func(msg *server.Message) {
		var data server.RoomListData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		model.SetLobby(data.Rooms)

		model.AddLogEntry("")
		if len(data.Rooms) == 0 {
			model.AddLogEntry("No open rooms. Joining any room id creates it.")
		} else {
			model.AddLogEntry("Open rooms:")
			for _, room := range data.Rooms {
				model.AddLogEntry(fmt.Sprintf("  %s: %d/%d players, big blind $%d",
					room.RoomID, room.PlayerCount, room.MaxPlayers, room.BigBlind))
			}
		}

		model.notifyMessageCallback(server.MessageTypeRoomList)
	})

	wsClient.AddEventHandler(server.MessageTypeLobbyUpdate, func(msg *server.Message) {
		var info rooms.RoomInfo
		if err := json.Unmarshal(msg.Data, &info); err != nil {
			return
		}

		model.UpsertLobbyRoom(info)

		model.notifyMessageCallback(server.MessageTypeLobbyUpdate)
	})

	wsClient.AddEventHandler(server.MessageTypeRoomState, func(msg *server.Message) {
		var snapshot game.Snapshot
		if err := json.Unmarshal(msg.Data, &snapshot); err != nil {
			return
		}

		model.SetSnapshot(&snapshot)

		model.notifyMessageCallback(server.MessageTypeRoomState)
	})

	wsClient.AddEventHandler(server.MessageTypePlayerJoined, func(msg *server.Message) {
		var data server.PlayerJoinedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		if data.PlayerID != wsClient.PlayerID() {
			model.AddLogEntry(fmt.Sprintf("%s sits down with $%d", data.PlayerID, data.Chips))
		}

		model.notifyMessageCallback(server.MessageTypePlayerJoined)
	})

	wsClient.AddEventHandler(server.MessageTypePlayerLeft, func(msg *server.Message) {
		var data server.PlayerLeftData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		model.AddLogEntry(fmt.Sprintf("%s leaves the room", data.PlayerID))

		model.notifyMessageCallback(server.MessageTypePlayerLeft)
	})

	wsClient.AddEventHandler(server.MessageTypeHandStart, func(msg *server.Message) {
		var data server.HandStartData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		model.AddLogEntry("")
		model.AddLogEntry(HandInfoStyle.Render(fmt.Sprintf("--- Hand %s • %d players • blinds $%d/$%d ---",
			data.HandID, len(data.Players), data.SmallBlind, data.BigBlind)))
		model.AddLogEntry(fmt.Sprintf("Dealer: %s", data.Dealer))

		model.notifyMessageCallback(server.MessageTypeHandStart)
	})

	wsClient.AddEventHandler(server.MessageTypeBlindPosted, func(msg *server.Message) {
		var data server.BlindPostedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		entry := fmt.Sprintf("%s posts %s blind $%d", data.PlayerID, data.Kind, data.Amount)
		if data.AllIn {
			entry += " (all-in)"
		}
		model.AddLogEntry(entry)

		model.notifyMessageCallback(server.MessageTypeBlindPosted)
	})

	wsClient.AddEventHandler(server.MessageTypePlayerAction, func(msg *server.Message) {
		var data server.PlayerActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		var entry string
		switch data.Action {
		case "fold":
			entry = fmt.Sprintf("%s folds", data.PlayerID)
		case "check":
			entry = fmt.Sprintf("%s checks", data.PlayerID)
		case "call":
			entry = fmt.Sprintf("%s calls $%d (pot $%d)", data.PlayerID, data.Amount, data.Pot)
		case "raise":
			entry = fmt.Sprintf("%s raises to $%d (pot $%d)", data.PlayerID, data.Amount, data.Pot)
		case "all-in":
			entry = fmt.Sprintf("%s goes all-in for $%d (pot $%d)", data.PlayerID, data.Amount, data.Pot)
		default:
			entry = fmt.Sprintf("%s: %s", data.PlayerID, data.Action)
		}
		if data.AllIn && data.Action != "all-in" {
			entry += " (all-in)"
		}
		model.AddLogEntry(entry)

		model.notifyMessageCallback(server.MessageTypePlayerAction)
	})

	wsClient.AddEventHandler(server.MessageTypePhaseChange, func(msg *server.Message) {
		var data server.PhaseChangeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		model.AddLogEntry("")
		model.AddLogEntry(HandInfoStyle.Render(fmt.Sprintf("*** %s ***", strings.ToUpper(data.Phase))))
		if len(data.CommunityCards) > 0 {
			model.AddLogEntry(fmt.Sprintf("Board: %s", formatCards(data.CommunityCards)))
		}

		model.notifyMessageCallback(server.MessageTypePhaseChange)
	})

	wsClient.AddEventHandler(server.MessageTypeHandEnd, func(msg *server.Message) {
		var data server.HandEndData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		model.AddLogEntry("")
		if data.Showdown {
			model.AddLogEntry(SuccessStyle.Render(fmt.Sprintf("%s wins $%d at showdown", data.Winner, data.Pot)))
		} else {
			model.AddLogEntry(SuccessStyle.Render(fmt.Sprintf("%s wins $%d, everyone else folded", data.Winner, data.Pot)))
		}
		model.AddLogEntry(InfoStyle.Render("Next hand starts shortly."))

		model.notifyMessageCallback(server.MessageTypeHandEnd)
	})

	wsClient.AddEventHandler(server.MessageTypeHandAborted, func(msg *server.Message) {
		var data server.HandAbortedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		model.AddLogEntry("")
		model.AddLogEntry(WarningStyle.Render(fmt.Sprintf("Hand %s aborted: %s", data.HandID, data.Reason)))

		model.notifyMessageCallback(server.MessageTypeHandAborted)
	})

	wsClient.AddEventHandler(server.MessageTypeError, func(msg *server.Message) {
		var data server.ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}

		model.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Server error [%s]: %s", data.Code, data.Message)))

		model.notifyMessageCallback(server.MessageTypeError)
	})
}

// StartCommandHandler starts the command handling loop for the TUI
func StartCommandHandler(wsClient *client.Client, model *Model) {
	go func() {
		for {
			action, args, shouldContinue, err := model.WaitForAction()
			if err != nil {
				continue
			}

			if !shouldContinue {
				break
			}

			if action == "" {
				continue
			}

			if strings.HasPrefix(action, "/") || action == "quit" {
				handleCommand(wsClient, model, action, args)
			} else {
				handleGameAction(wsClient, model, action, args)
			}
		}
	}()
}

// handleCommand processes TUI commands like /list, /join, /leave, /quit
func handleCommand(wsClient *client.Client, model *Model, action string, args []string) {
	switch action {
	case "/list":
		if err := wsClient.ListRooms(); err != nil {
			model.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Error listing rooms: %v", err)))
		}

	case "/join":
		if len(args) == 0 {
			model.AddLogEntry("Usage: /join <room>")
			return
		}
		if wsClient.CurrentRoom() != "" {
			model.AddLogEntry("Leave your current room first with /leave")
			return
		}
		if err := wsClient.JoinRoom(args[0]); err != nil {
			model.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Error joining room: %v", err)))
		}

	case "/leave":
		roomID := wsClient.CurrentRoom()
		if roomID == "" {
			model.AddLogEntry("You're not in a room")
			return
		}
		if err := wsClient.LeaveRoom(roomID); err != nil {
			model.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Error leaving room: %v", err)))
		}

	case "/quit", "quit":
		model.SendQuitSignal()

	default:
		model.AddLogEntry(fmt.Sprintf("Unknown command: %s", action))
		model.AddLogEntry("Available commands: /list, /join <room>, /leave, /quit")
	}
}

// handleGameAction translates user input into a wire action. Invalid
// input is reported locally and nothing is sent; the server silently
// drops out-of-turn actions anyway.
func handleGameAction(wsClient *client.Client, model *Model, action string, args []string) {
	if wsClient.CurrentRoom() == "" {
		model.AddLogEntry("Join a room first: /join <room>")
		return
	}

	var verb string
	amount := 0

	switch action {
	case "f", "fold":
		verb = "fold"
	case "k", "check":
		verb = "check"
	case "c", "call":
		verb = "call"
	case "a", "all", "allin", "all-in":
		verb = "all-in"
	case "r", "raise":
		if len(args) == 0 {
			model.AddLogEntry("Usage: raise <amount>")
			return
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			model.AddLogEntry(fmt.Sprintf("Invalid raise amount: %s", args[0]))
			return
		}
		verb = "raise"
		amount = n
	default:
		model.AddLogEntry(fmt.Sprintf("Unknown action: %s", action))
		model.AddLogEntry("Actions: fold, check, call, raise <amount>, allin")
		return
	}

	if err := wsClient.SendAction(verb, amount); err != nil {
		model.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Error sending action: %v", err)))
	}
}
