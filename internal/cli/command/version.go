package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionlab-go/internal/cli/output"
	"github.com/yndnr/sessionlab-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			info := buildinfo.Get()
			if ParseGlobalFlags(c).Output == string(output.FormatTable) {
				_, err := fmt.Fprintln(writer(c), info.String())
				return err
			}
			return printOutput(c, info)
		},
	}
}
