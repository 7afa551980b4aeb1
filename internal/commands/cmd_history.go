package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/toastq/internal/core/notify"
	"github.com/hay-kot/toastq/internal/core/styles"
	"github.com/hay-kot/toastq/internal/printer"
	"github.com/hay-kot/toastq/pkg/iojson"
)

var errHistoryDisabled = errors.New("history is disabled (set history.enabled in config)")

type HistoryCmd struct {
	flags *Flags
	app   *App

	jsonOutput bool
	clear      bool
	limit      int
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags, app *App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "List recorded toasts",
		UsageText: "toastq history [--json] [--limit N] [--clear]",
		Description: `Lists toasts recorded in the history database, newest first.

Output is a table on a terminal and JSON lines otherwise. Use --json to force
JSON lines.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum records to show (0 = all)",
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "delete all recorded toasts",
				Destination: &cmd.clear,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.app.History == nil {
		return errHistoryDisabled
	}

	if cmd.clear {
		return cmd.runClear(ctx)
	}

	records, err := cmd.app.History.List(ctx)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	if cmd.limit > 0 && len(records) > cmd.limit {
		records = records[:cmd.limit]
	}

	out := c.Root().Writer

	if cmd.jsonOutput || !term.IsTerminal(int(os.Stdout.Fd())) {
		return iojson.WriteLines(out, records)
	}

	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "No toasts recorded\n")
		return nil
	}

	writeHistoryTable(out, records)
	return nil
}

func (cmd *HistoryCmd) runClear(ctx context.Context) error {
	n, err := cmd.app.History.Count(ctx)
	if err != nil {
		return fmt.Errorf("count history: %w", err)
	}

	if n == 0 {
		printer.Ctx(ctx).Warnf("History is already empty")
		return nil
	}

	if err := cmd.app.History.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	printer.Ctx(ctx).Successf("Cleared %d toast(s)", n)
	return nil
}

func writeHistoryTable(out io.Writer, records []notify.Record) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tSEVERITY\tTITLE\tDESCRIPTION")

	for _, r := range records {
		sev := string(r.Severity)
		if sev == "" {
			sev = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n",
			r.CreatedAt.Local().Format(time.DateTime),
			styles.SeverityIcon(r.Severity), sev,
			r.Title,
			r.Description,
		)
	}

	_ = w.Flush()
}
