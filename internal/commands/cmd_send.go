package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/toastq/internal/core/envelope"
	"github.com/hay-kot/toastq/internal/core/notify"
	"github.com/hay-kot/toastq/internal/printer"
	"github.com/hay-kot/toastq/internal/server"
	"github.com/hay-kot/toastq/pkg/iojson"
)

const sendTimeout = 10 * time.Second

type SendCmd struct {
	flags *Flags
	app   *App

	addr        string
	id          string
	title       string
	description string
	severity    string
	duration    time.Duration
	input       iojson.FileReader[server.CreateRequest]
}

// NewSendCmd creates a new send command
func NewSendCmd(flags *Flags, app *App) *SendCmd {
	return &SendCmd{flags: flags, app: app}
}

// Register adds the send command to the application
func (cmd *SendCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "send",
		Usage:     "Send a toast to a running server",
		UsageText: "toastq send [options]",
		Description: `Posts a toast to a server started with 'toastq serve'.

When --title is omitted, the toast is read as JSON from --file or stdin. If
stdin is a terminal, an interactive form prompts for the fields instead.

The server's answer is reported as a local toast.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Usage:       "server address (defaults to server.addr from config)",
				Sources:     cli.EnvVars("TOASTQ_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "id",
				Usage:       "toast id (replaces an existing toast with the same id)",
				Destination: &cmd.id,
			},
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "toast title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "toast description",
				Destination: &cmd.description,
			},
			&cli.StringFlag{
				Name:        "severity",
				Aliases:     []string{"s"},
				Usage:       "success, error, warning, or info",
				Value:       string(notify.SeverityInfo),
				Destination: &cmd.severity,
			},
			&cli.DurationFlag{
				Name:        "duration",
				Usage:       "display duration (defaults to the severity's duration)",
				Destination: &cmd.duration,
			},
			cmd.input.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SendCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	req, err := cmd.request(c)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	addr := cmd.addr
	if addr == "" {
		addr = cmd.app.Config.Server.Addr
	}

	env, err := postToast(ctx, baseURL(addr), req)
	if err != nil {
		return fmt.Errorf("send toast: %w", err)
	}

	h := envelope.Report(cmd.app.Center, env)
	n, _ := h.Get()
	if env.Success {
		p.Success(n.Description, env.Data.ID)
		return nil
	}

	p.Errorf("%s", n.Description)
	return cli.Exit("", 1)
}

// request builds the toast from flags, JSON input, or the interactive form.
func (cmd *SendCmd) request(c *cli.Command) (server.CreateRequest, error) {
	switch {
	case cmd.title != "":
		return server.CreateRequest{
			ID:          cmd.id,
			Title:       cmd.title,
			Description: cmd.description,
			Severity:    notify.Severity(cmd.severity),
			DurationMS:  cmd.duration.Milliseconds(),
		}, nil
	case c.IsSet("file") || !term.IsTerminal(int(os.Stdin.Fd())):
		return cmd.input.Read()
	default:
		return cmd.runForm()
	}
}

func (cmd *SendCmd) runForm() (server.CreateRequest, error) {
	req := server.CreateRequest{
		ID:          cmd.id,
		Description: cmd.description,
		Severity:    notify.Severity(cmd.severity),
		DurationMS:  cmd.duration.Milliseconds(),
	}

	options := make([]huh.Option[notify.Severity], 0, len(notify.Severities))
	for _, s := range notify.Severities {
		options = append(options, huh.NewOption(string(s), s))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&req.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(&req.Description),
			huh.NewSelect[notify.Severity]().
				Title("Severity").
				Options(options...).
				Value(&req.Severity),
		),
	)

	if err := form.Run(); err != nil {
		return server.CreateRequest{}, err
	}
	return req, nil
}

// baseURL turns a listen address such as ":7878" into a client URL.
func baseURL(addr string) string {
	switch {
	case strings.HasPrefix(addr, "http://"), strings.HasPrefix(addr, "https://"):
		return strings.TrimRight(addr, "/")
	case strings.HasPrefix(addr, ":"):
		return "http://localhost" + addr
	default:
		return "http://" + addr
	}
}

func postToast(ctx context.Context, base string, req server.CreateRequest) (envelope.Envelope[server.Toast], error) {
	var env envelope.Envelope[server.Toast]

	body, err := json.Marshal(req)
	if err != nil {
		return env, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/toasts", bytes.NewReader(body))
	if err != nil {
		return env, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return env, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return env, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	log.Debug().Int("status", resp.StatusCode).Bool("success", env.Success).Msg("toast sent")
	return env, nil
}
