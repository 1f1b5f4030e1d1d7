package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/miladsoleymani/mediamux/core"
	"github.com/miladsoleymani/mediamux/environment"
	"github.com/miladsoleymani/mediamux/internal/logger"
	"github.com/miladsoleymani/mediamux/profile"
)

// cli carries what every subcommand shares.
type cli struct {
	v   *viper.Viper
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "mediamux",
		Short:         "Evaluate CSS media queries against devices and live environments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML config file (default: none)")
	pf.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console or json)")
	pf.String("profiles", "", "YAML device profiles file (default: built-in profiles)")
	cobra.CheckErr(c.v.BindPFlag("log.level", pf.Lookup("log-level")))
	cobra.CheckErr(c.v.BindPFlag("log.format", pf.Lookup("log-format")))
	cobra.CheckErr(c.v.BindPFlag("profiles", pf.Lookup("profiles")))

	root.AddCommand(
		newMatchCmd(c),
		newWatchCmd(c),
		newPublishCmd(c),
		newProfilesCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	c.v.SetEnvPrefix("MEDIAMUX")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		c.v.SetConfigFile(path)
		c.v.SetConfigType("yaml")
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	c.log = logger.New(logger.Options{
		Level:     c.v.GetString("log.level"),
		Format:    c.v.GetString("log.format"),
		Component: "cli",
		Writer:    cmd.ErrOrStderr(),
	})
	return nil
}

// profiles loads the configured profile set, or the built-in one.
func (c *cli) profiles() (*profile.Set, error) {
	path := c.v.GetString("profiles")
	if path == "" {
		return profile.Builtin(), nil
	}
	return profile.Load(path)
}

// device resolves --device pairs, or the named profile when none are given.
func (c *cli) device(cmd *cobra.Command) (core.Device, error) {
	pairs, _ := cmd.Flags().GetStringArray("device")
	if len(pairs) > 0 {
		return parseDevice(pairs)
	}
	name, _ := cmd.Flags().GetString("profile")
	set, err := c.profiles()
	if err != nil {
		return nil, err
	}
	return set.Get(name)
}

// environmentConfig reads the "environment" section. Flags and
// MEDIAMUX_ENVIRONMENT_* variables take precedence over the config file;
// plugin extras come from environment.extra.
func (c *cli) environmentConfig(cmd *cobra.Command) (string, environment.Config, error) {
	f := cmd.Flags()
	for key, flag := range map[string]string{
		"environment.name":    "env",
		"environment.brokers": "brokers",
		"environment.topic":   "topic",
		"environment.group":   "group",
	} {
		if err := c.v.BindPFlag(key, f.Lookup(flag)); err != nil {
			return "", environment.Config{}, err
		}
	}

	name := c.v.GetString("environment.name")
	if name == "" {
		return "", environment.Config{}, errors.New("no environment selected, use --env")
	}
	cfg := environment.Config{
		Brokers: c.v.GetStringSlice("environment.brokers"),
		Topic:   c.v.GetString("environment.topic"),
		Group:   c.v.GetString("environment.group"),
		Extra:   c.v.GetStringMap("environment.extra"),
	}
	return name, cfg, nil
}

func addEnvironmentFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("env", "", fmt.Sprintf("environment source (%s)", strings.Join(environment.Names(), ", ")))
	f.StringSlice("brokers", nil, "broker addresses")
	f.String("topic", "", "subject, topic or exchange carrying device descriptions")
	f.String("group", "", "consumer group")
}

func addDeviceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArray("device", nil, "device feature as name=value, repeatable (e.g. --device width=1024)")
	f.String("profile", "", "device profile name (default: the profile set's default)")
}
