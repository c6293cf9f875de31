package main

import (
	"os"

	"github.com/lox/headsup/internal/server"
)

// ServeCmd runs the websocket decision service
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.address and server.port)"`
	Seed int64  `help:"Seed for the engines' randomness (0 for random)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger, err := g.newLogger(os.Stderr, cfg.Log.Level)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(logger)
	defer cancel()

	addr := cfg.Server.Addr()
	if c.Addr != "" {
		addr = c.Addr
	}
	seed := cfg.AI.Seed
	if c.Seed != 0 {
		seed = c.Seed
	}

	srv := server.New(server.Config{
		Addr:              addr,
		Seed:              seed,
		Engine:            cfg.EngineConfig(),
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
		Logger:            logger,
	})
	return srv.ListenAndServe(ctx)
}
