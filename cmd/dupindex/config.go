package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the configuration file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			all := cfg.GetAllConfig()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", cfg.Path())
			fmt.Fprintf(out, "index.mode = %s\n", all.Index.Mode)
			fmt.Fprintf(out, "index.empty_subkey = %s\n", all.Index.EmptySubkey)
			fmt.Fprintf(out, "filehash.default = %s\n", all.Hash.Default)
			fmt.Fprintf(out, "scan.pattern = %s\n", all.Scan.Pattern)
			fmt.Fprintf(out, "scan.include_hidden = %t\n", all.Scan.IncludeHidden)
			fmt.Fprintf(out, "scan.continue_on_error = %t\n", all.Scan.ContinueOnError)
			fmt.Fprintf(out, "scan.ignore_file = %s\n", all.Scan.IgnoreFile)
			fmt.Fprintf(out, "output.format = %s\n", all.Output.Format)
			fmt.Fprintf(out, "output.sort = %t\n", all.Output.Sort)
			fmt.Fprintf(out, "verbose.level = %d\n", all.Verbose.Level)
			fmt.Fprintf(out, "verbose.debug = %s\n", all.Verbose.Debug)
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfg.Path())
			return nil
		},
	}

	cmd.AddCommand(show, initCmd)
	return cmd
}
