package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionlab-go/internal/cli/connection"
	"github.com/yndnr/sessionlab-go/internal/cli/output"
	"github.com/yndnr/sessionlab-go/internal/core/domain"
	"github.com/yndnr/sessionlab-go/internal/server/config"
)

func serverFlag(def string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "app address",
		EnvVars: []string{"SESSIONLAB_SERVER"},
		Value:   def,
	}
}

// CapturesCommand returns the captures command.
func CapturesCommand() *cli.Command {
	return &cli.Command{
		Name:  "captures",
		Usage: "List recent captures of a running collector",
		Flags: []cli.Flag{
			serverFlag(config.DefaultCollectorAddr),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "number of captures, 0 for all kept",
				Value:   20,
			},
		},
		Action: listCaptures,
	}
}

func listCaptures(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
	defer cancel()

	captures, err := connection.NewHTTPClient(c.String("server")).Captures(ctx, c.Int("limit"))
	if err != nil {
		return err
	}
	return printOutput(c, captureList(captures))
}

type captureList []*domain.Capture

func (l captureList) Table() *output.Table {
	t := output.NewTable("TIME", "VALUE", "FROM", "USER AGENT")
	for _, c := range l {
		t.AddRow(c.CapturedAt.Local().Format(domain.CaptureTimeLayout), c.Value, c.RemoteIP, c.UserAgent)
	}
	return t
}

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check that an app is up",
		Flags:  []cli.Flag{serverFlag(config.DefaultVulnerableAddr)},
		Action: checkHealth,
	}
}

func checkHealth(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	h, err := connection.NewHTTPClient(c.String("server")).Health(ctx)
	if err != nil {
		return err
	}
	if ParseGlobalFlags(c).Output == string(output.FormatTable) {
		_, err = fmt.Fprintf(writer(c), "%s: %s (version %s)\n", h.App, h.Status, h.Version)
		return err
	}
	return printOutput(c, h)
}
