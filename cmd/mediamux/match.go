package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/miladsoleymani/mediamux/core"
)

func newMatchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match QUERY",
		Short: "Evaluate a query against a device profile or explicit features",
		Example: `  mediamux match "(min-width: 768px)" --profile tablet
  mediamux match "screen and (orientation: landscape)" --device type=screen --device width=1280 --device height=720
  mediamux match "(hover: hover)" --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			if all, _ := cmd.Flags().GetBool("all"); all {
				return c.matchAll(cmd, query)
			}

			dev, err := c.device(cmd)
			if err != nil {
				return err
			}
			h, err := core.New(query, dev, true, core.WithLogger(c.log))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h.Matches())
			return nil
		},
	}
	addDeviceFlags(cmd)
	cmd.Flags().Bool("all", false, "evaluate against every profile")
	return cmd
}

func (c *cli) matchAll(cmd *cobra.Command, query string) error {
	if _, err := core.Parse(query); err != nil {
		return err
	}
	set, err := c.profiles()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROFILE\tMATCHES")
	for _, name := range set.Names() {
		dev, err := set.Get(name)
		if err != nil {
			return err
		}
		ok, err := core.StaticMatch(query, dev)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%t\n", name, ok)
	}
	return w.Flush()
}

func newProfilesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List device profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := c.profiles()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDEFAULT\tDESCRIPTION")
			for _, name := range set.Names() {
				def := ""
				if name == set.Default {
					def = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, def, set.Profiles[name].Description)
			}
			return w.Flush()
		},
	}
}
