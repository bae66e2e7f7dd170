package main

import (
	"github.com/alecthomas/kong"

	"github.com/lox/holdem-rooms/internal/client/commands"
)

type CLI struct {
	commands.GlobalFlags

	Play commands.PlayCommand      `cmd:"" default:"withargs" help:"Connect and play in the terminal UI"`
	List commands.ListRoomsCommand `cmd:"" help:"List open rooms and exit"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem-client"),
		kong.Description("Terminal client for multiplayer Texas Hold'em rooms"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&cli.GlobalFlags)
	ctx.FatalIfErrorf(err)
}
