package command

import (
	"errors"
	"fmt"
	"sort"

	"github.com/knadh/koanf/maps"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionlab-go/internal/cli/output"
	"github.com/yndnr/sessionlab-go/internal/server/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print the effective configuration of an app with secrets masked",
				ArgsUsage: "<vulnerable|hardened|collector>",
				Action:    configShow,
			},
			{
				Name:      "validate",
				Usage:     "Validate the configuration of an app",
				ArgsUsage: "<vulnerable|hardened|collector>",
				Action:    configValidate,
			},
		},
	}
}

func appArg(c *cli.Context) (config.App, error) {
	switch which := config.App(c.Args().First()); which {
	case appVulnerable, appHardened, appCollector:
		return which, nil
	case "":
		return "", errors.New("app is required (vulnerable, hardened or collector)")
	default:
		return "", fmt.Errorf("unknown app %q", which)
	}
}

func configShow(c *cli.Context) error {
	which, err := appArg(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c, which)
	if err != nil {
		return err
	}

	m := config.ToMap(config.Sanitize(cfg))
	if ParseGlobalFlags(c).Output == string(output.FormatTable) {
		return printOutput(c, configTable(m))
	}
	return printOutput(c, m)
}

func configValidate(c *cli.Context) error {
	which, err := appArg(c)
	if err != nil {
		return err
	}
	if _, err := loadConfig(c, which); err != nil {
		return err
	}
	_, err = fmt.Fprintf(writer(c), "%s configuration is valid\n", which)
	return err
}

func configTable(m map[string]any) *output.Table {
	flat, _ := maps.Flatten(m, nil, ".")
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := output.NewTable("KEY", "VALUE")
	for _, k := range keys {
		t.AddRow(k, fmt.Sprint(flat[k]))
	}
	return t
}
