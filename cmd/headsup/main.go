package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every command
type Globals struct {
	Config   string `short:"c" default:"headsup.hcl" help:"HCL configuration file (defaults apply when missing)"`
	LogLevel string `help:"Override the configured log level (debug, info, warn, error)"`
	LogJSON  bool   `name:"log-json" help:"Write logs as JSON"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play heads-up against the AI in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Pit the AI against a scripted opponent"`
	Serve    ServeCmd         `cmd:"" help:"Serve the AI over a websocket"`
	Eval     EvalCmd          `cmd:"" help:"Evaluate a hand, or compare two"`
	History  HistoryCmd       `cmd:"" help:"Inspect and export recorded hands"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("headsup"),
		kong.Description("Heads-up no-limit hold'em against an opponent-modelling AI"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
