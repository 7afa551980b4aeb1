package commands

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/toastq/internal/core/config"
	"github.com/hay-kot/toastq/internal/printer"
	"github.com/hay-kot/toastq/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "toastq config validate [options]",
				Description: "Validates the configuration file, checking toast settings, the theme, and the data directory.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationReport struct {
	Valid  bool              `json:"valid"`
	Path   string            `json:"path"`
	Errors []validationIssue `json:"errors,omitempty"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	cfg, err := config.Read(cmd.flags.ConfigPath, cmd.flags.DataDir)
	if err != nil {
		return err
	}

	report := validateConfig(cfg, cmd.flags.ConfigPath)

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report); err != nil {
			return err
		}
	} else {
		printValidation(printer.Ctx(ctx), report)
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func validateConfig(cfg *config.Config, configPath string) validationReport {
	report := validationReport{Valid: true, Path: configPath}

	err := cfg.ValidateDeep(configPath)
	if err == nil {
		return report
	}

	report.Valid = false

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		report.Errors = []validationIssue{{Message: err.Error()}}
		return report
	}

	for _, fe := range fieldErrs {
		report.Errors = append(report.Errors, validationIssue{Field: fe.Field, Message: fe.Err.Error()})
	}
	return report
}

func printValidation(p *printer.Printer, report validationReport) {
	for _, issue := range report.Errors {
		if issue.Field == "" {
			p.Errorf("%s", issue.Message)
			continue
		}
		p.Errorf("%s: %s", issue.Field, issue.Message)
	}

	if report.Valid {
		p.Successf("Configuration is valid")
		return
	}

	p.Printf("")
	p.Errorf("%d error(s) found", len(report.Errors))
}
