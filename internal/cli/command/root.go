package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionlab-go/internal/cli/output"
	"github.com/yndnr/sessionlab-go/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	info := buildinfo.Get()
	return &cli.App{
		Name:    "sessionlab",
		Usage:   "session hijacking lab: vulnerable app, hardened app and cookie collector",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ServeCommand(appVulnerable),
			ServeCommand(appHardened),
			ServeCommand(appCollector),
			HashPasswordCommand(),
			ConfigCommand(),
			CapturesCommand(),
			HealthCommand(),
			VersionCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			EnvVars: []string{"SESSIONLAB_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format: text, json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format for query commands: table, json, yaml",
			Value:   string(output.FormatTable),
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
	Output     string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		ConfigFile: c.String("config"),
		LogLevel:   c.String("log-level"),
		LogFormat:  c.String("log-format"),
		Output:     c.String("output"),
	}
}

// printOutput writes data to the app's writer in the --output format.
func printOutput(c *cli.Context, data any) error {
	f, err := output.NewFormatter(output.Format(ParseGlobalFlags(c).Output))
	if err != nil {
		return err
	}
	return f.Format(writer(c), data)
}

func writer(c *cli.Context) io.Writer {
	if c.App != nil && c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
