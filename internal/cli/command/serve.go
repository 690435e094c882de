package command

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionlab-go/internal/infra/buildinfo"
	"github.com/yndnr/sessionlab-go/internal/infra/confloader"
	"github.com/yndnr/sessionlab-go/internal/server/app"
	"github.com/yndnr/sessionlab-go/internal/server/config"
	"github.com/yndnr/sessionlab-go/internal/telemetry/logger"
)

const (
	appVulnerable = config.AppVulnerable
	appHardened   = config.AppHardened
	appCollector  = config.AppCollector
)

var serveUsage = map[config.App]string{
	appVulnerable: "Run the vulnerable app (fixation, reflected XSS, script-readable cookie)",
	appHardened:   "Run the hardened app (ID regeneration, client binding, escaped output)",
	appCollector:  "Run the cookie collector",
}

// ServeCommand returns the command that runs one app.
func ServeCommand(which config.App) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Aliases: []string{"a"},
			Usage:   "listen address (host:port)",
		},
	}
	switch which {
	case appHardened:
		flags = append(flags, &cli.BoolFlag{
			Name:  "insecure-cookie",
			Usage: "drop the Secure cookie flag to test over plain HTTP",
		})
	case appCollector:
		flags = append(flags, &cli.StringFlag{
			Name:  "log-file",
			Usage: "capture log file",
		})
	}

	return &cli.Command{
		Name:  string(which),
		Usage: serveUsage[which],
		Flags: flags,
		Action: func(c *cli.Context) error {
			return runServe(c, which)
		},
	}
}

func runServe(c *cli.Context, which config.App) error {
	cfg, err := loadConfig(c, which)
	if err != nil {
		return err
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting sessionlab",
		"app", string(which),
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", ParseGlobalFlags(c).ConfigFile,
	)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))
	if which == appHardened && !cfg.Cookie.Secure {
		log.Warn("Secure cookie flag disabled; use only for local HTTP testing")
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("init %s: %w", which, err)
	}
	return a.Run(c.Context)
}

// loadConfig applies defaults, the config file, SESSIONLAB_* variables and
// command-line flags, in that order, then validates the result.
func loadConfig(c *cli.Context, which config.App) (*config.ServerConfig, error) {
	cfg := config.Default(which)
	flags := ParseGlobalFlags(c)

	opts := []confloader.Option{confloader.WithOverrides(flagOverrides(c, flags))}
	if flags.ConfigFile != "" {
		opts = append(opts, confloader.WithConfigFile(flags.ConfigFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.App = which

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func flagOverrides(c *cli.Context, flags *GlobalFlags) map[string]any {
	overrides := make(map[string]any)
	if flags.LogLevel != "" {
		overrides["log.level"] = flags.LogLevel
	}
	if flags.LogFormat != "" {
		overrides["log.format"] = flags.LogFormat
	}
	if c.IsSet("addr") {
		overrides["http.addr"] = c.String("addr")
	}
	if c.IsSet("insecure-cookie") {
		overrides["cookie.secure"] = !c.Bool("insecure-cookie")
	}
	if c.IsSet("log-file") {
		overrides["collector.log_file"] = c.String("log-file")
	}
	return overrides
}

// initLogger builds the redacting logger and installs it as the default.
func initLogger(cfg *config.ServerConfig) (*slog.Logger, error) {
	l, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(l)
	return l.Slog(), nil
}
