package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/lox/headsup/internal/history"
	"github.com/lox/headsup/poker"
)

// HistoryCmd works with the recorded hands
type HistoryCmd struct {
	Recent  HistoryRecentCmd  `cmd:"" default:"1" help:"List the latest hands"`
	Show    HistoryShowCmd    `cmd:"" help:"Print one hand with every action"`
	Summary HistorySummaryCmd `cmd:"" help:"Totals per player"`
	Export  HistoryExportCmd  `cmd:"" help:"Write hands as a PHH session file"`
}

// HistoryDB is the --db flag shared by the history subcommands
type HistoryDB struct {
	DB string `help:"SQLite database (overrides history.path)"`
}

type HistoryRecentCmd struct {
	HistoryDB
	N       int    `short:"n" default:"20" help:"Number of hands"`
	Session string `help:"Only this session"`
}

type HistoryShowCmd struct {
	HistoryDB
	ID string `arg:"" help:"Hand ID"`
}

type HistorySummaryCmd struct {
	HistoryDB
}

type HistoryExportCmd struct {
	HistoryDB
	File    string `arg:"" help:"Output .phhs file"`
	N       int    `short:"n" default:"1000" help:"Number of most recent hands"`
	Session string `help:"Only this session"`
}

// open resolves the database path and opens the store
func (h HistoryDB) open(g *Globals) (*history.Store, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}
	path := cfg.History.Path
	if h.DB != "" {
		path = h.DB
	}
	if path == "" {
		return nil, fmt.Errorf("no history database: set history.path in %s or pass --db", g.Config)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("history database: %w", err)
	}
	logger, err := g.newLogger(os.Stderr, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return history.Open(history.Config{Path: path, Logger: logger})
}

func (c *HistoryRecentCmd) Run(g *Globals) error {
	store, err := c.open(g)
	if err != nil {
		return err
	}
	defer store.Close()

	hands, err := store.Recent(context.Background(), c.N, c.Session)
	if err != nil {
		return err
	}
	printRecent(os.Stdout, hands)
	return nil
}

func printRecent(w io.Writer, hands []*history.Hand) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLAYED\tHAND\tBOARD\tPOT\tRESULT")
	for _, h := range hands {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%s\n",
			h.ID, h.PlayedAt.Local().Format("2006-01-02 15:04"), h.Number,
			poker.FormatCards(h.Board), h.Pot, h.Result())
	}
	tw.Flush()
}

func (c *HistoryShowCmd) Run(g *Globals) error {
	store, err := c.open(g)
	if err != nil {
		return err
	}
	defer store.Close()

	hand, err := store.Get(context.Background(), c.ID)
	if err != nil {
		return err
	}
	printHand(os.Stdout, hand)
	return nil
}

func printHand(w io.Writer, h *history.Hand) {
	fmt.Fprintf(w, "Hand %s (#%d of session %s), blinds %d/%d\n", h.ID, h.Number, h.Session, h.SmallBlind, h.BigBlind)
	for seat, name := range h.Players {
		dealer := ""
		if seat == h.Dealer {
			dealer = " (dealer)"
		}
		fmt.Fprintf(w, "  %s%s: [%s]\n", name, dealer, poker.FormatCards(h.Hole[seat]))
	}
	round := -1
	for _, a := range h.Actions {
		if int(a.Round) != round {
			round = int(a.Round)
			fmt.Fprintf(w, "%s\n", a.Round)
		}
		fmt.Fprintf(w, "  %s\n", a)
	}
	if len(h.Board) > 0 {
		fmt.Fprintf(w, "Board: [%s]\n", poker.FormatCards(h.Board))
	}
	fmt.Fprintln(w, h.Result())
}

func (c *HistorySummaryCmd) Run(g *Globals) error {
	store, err := c.open(g)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := store.Summary(context.Background())
	if err != nil {
		return err
	}
	printSummary(os.Stdout, sum)
	return nil
}

func printSummary(w io.Writer, sum history.Summary) {
	fmt.Fprintf(w, "%d hands in %d sessions, %d showdowns (%d split), biggest pot %d\n",
		sum.Hands, sum.Sessions, sum.Showdowns, sum.Chopped, sum.BiggestPot)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tHANDS\tWON\tNET")
	for _, p := range sum.Players {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%+d\n", p.Name, p.Hands, p.Won, p.Net)
	}
	tw.Flush()
}

func (c *HistoryExportCmd) Run(g *Globals) error {
	store, err := c.open(g)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ExportPHH(context.Background(), c.File, c.N, c.Session)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d hands to %s\n", n, c.File)
	return nil
}
