package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	dupindex "github.com/mattkeenan/dupindex/pkg"
)

// options holds the command line flags; flags that are set win over the config file
type options struct {
	configPath      string
	overrides       []string
	pattern         string
	includeHidden   bool
	by              string
	hash            string
	format          string
	sort            bool
	continueOnError bool
	ignoreFile      string
	printStructure  bool
	verbose         int
	debug           string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "dupindex [flags] DIR...",
		Short: "List duplicate files in directories",
		Long: `dupindex indexes the files under one or more directories by content digest
or by file name and prints every group of files sharing a key.

Files are bucketed five levels deep by the leading characters of their key
(the extension first, when indexing by name), so memory grows with the
prefixes actually seen rather than with the key space.`,
		Example: `  dupindex ~/Pictures /mnt/backup/Pictures
  dupindex -p '*.jpg' -b filename ~/Pictures
  dupindex --format=fdupes --sort --hash=sha256 .`,
		Args:          cobra.MinimumNArgs(1),
		Version:       getVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, opts)
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVar(&opts.configPath, "config", "", "config file (default "+dupindex.DefaultConfigPath()+")")
	persistent.StringArrayVar(&opts.overrides, "set", nil, "override a config value (key:value, repeatable)")

	flags := cmd.Flags()
	flags.StringVarP(&opts.pattern, "pattern", "p", "*", "pattern of files to include")
	flags.BoolVarP(&opts.includeHidden, "include-hidden", "a", false, "include hidden files")
	flags.StringVarP(&opts.by, "by", "b", "digest", "attribute to determine duplication (digest|filename)")
	flags.StringVar(&opts.hash, "hash", dupindex.DefaultHashAlgorithm, "digest algorithm (md5|sha1|sha256|sha512|xxh64)")
	flags.StringVar(&opts.format, "format", dupindex.FormatHuman, "output format (human|json|fdupes)")
	flags.BoolVar(&opts.sort, "sort", false, "order groups by key")
	flags.BoolVar(&opts.continueOnError, "continue-on-error", false, "skip unreadable files instead of stopping")
	flags.StringVar(&opts.ignoreFile, "ignore-file", "", "file of regular expressions for paths to skip")
	flags.BoolVar(&opts.printStructure, "print-structure", false, "print the bucket tree before the result")
	flags.CountVarP(&opts.verbose, "verbose", "v", "show more information while running (repeat for more)")
	flags.StringVar(&opts.debug, "debug", "", "comma-separated debug flags (scan)")

	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

// loadConfig reads the config file and layers --set overrides and explicit flags on top
func loadConfig(cmd *cobra.Command, opts *options) (*dupindex.Config, error) {
	path := opts.configPath
	if path == "" {
		path = dupindex.DefaultConfigPath()
	}
	cfg, err := dupindex.LoadConfig(afero.NewOsFs(), path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(opts.overrides); err != nil {
		return nil, err
	}

	flagKeys := []struct {
		flag  string
		key   string
		value func() string
	}{
		{"pattern", "pattern", func() string { return opts.pattern }},
		{"include-hidden", "include_hidden", func() string { return strconv.FormatBool(opts.includeHidden) }},
		{"by", "mode", func() string { return opts.by }},
		{"hash", "hash", func() string { return opts.hash }},
		{"format", "format", func() string { return opts.format }},
		{"sort", "sort", func() string { return strconv.FormatBool(opts.sort) }},
		{"continue-on-error", "continue_on_error", func() string { return strconv.FormatBool(opts.continueOnError) }},
		{"ignore-file", "ignore_file", func() string { return opts.ignoreFile }},
		{"verbose", "level", func() string { return strconv.Itoa(opts.verbose) }},
		{"debug", "debug", func() string { return opts.debug }},
	}
	for _, fk := range flagKeys {
		if f := cmd.Flags().Lookup(fk.flag); f != nil && f.Changed {
			if err := cfg.Set(fk.key, fk.value()); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runScan(cmd *cobra.Command, dirs []string, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	all := cfg.GetAllConfig()

	dupindex.SetVerboseOutput(cmd.ErrOrStderr())
	dupindex.SetVerboseLevel(all.Verbose.Level)
	dupindex.SetDebugFlags(all.Verbose.Debug)

	mode, err := dupindex.ParseIndexMode(all.Index.Mode)
	if err != nil {
		return err
	}
	algorithm, err := dupindex.GetHashAlgorithm(all.Hash.Default)
	if err != nil {
		return err
	}

	indexOpts := []dupindex.Option{
		dupindex.WithMode(mode),
		dupindex.WithHashAlgorithm(algorithm),
		dupindex.WithEmptySubkey(all.Index.EmptySubkey),
	}
	if all.Scan.IgnoreFile != "" {
		im, err := dupindex.LoadIgnoreFile(afero.NewOsFs(), all.Scan.IgnoreFile)
		if err != nil {
			return err
		}
		indexOpts = append(indexOpts, dupindex.WithIgnoreManager(im))
	}
	if all.Scan.ContinueOnError {
		indexOpts = append(indexOpts, dupindex.WithContinueOnError())
	}

	fi, err := dupindex.NewFileIndex(indexOpts...)
	if err != nil {
		return err
	}

	dupindex.VerboseLog(1, "dirname_list: %v", dirs)
	dupindex.VerboseLog(1, "pattern: %s", all.Scan.Pattern)

	var skipped []error
	for _, dir := range dirs {
		err := fi.AddFromDirectory(dir, all.Scan.Pattern, all.Scan.IncludeHidden)
		var scanErr *dupindex.ScanError
		if errors.As(err, &scanErr) {
			skipped = append(skipped, scanErr.Errors...)
			continue
		}
		if err != nil {
			return err
		}
	}

	if opts.printStructure {
		if err := fi.PrintStructure(cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	groups := fi.GetDuplicateFileList()
	if all.Output.Sort {
		groups = dupindex.SortDuplicateGroups(groups)
	}

	report := dupindex.NewReport(mode, algorithm.Name, dirs, groups)
	report.RunID = uuid.NewString()
	if err := dupindex.WriteReport(cmd.OutOrStdout(), report, all.Output.Format); err != nil {
		return err
	}

	for _, err := range skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "dupindex: warning: %v\n", err)
	}
	return nil
}
