package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/quantmind-br/libmanifest/internal/app"
	"github.com/quantmind-br/libmanifest/internal/config"
	"github.com/quantmind-br/libmanifest/internal/output"
	"github.com/quantmind-br/libmanifest/internal/utils"
	"github.com/quantmind-br/libmanifest/pkg/manifest"
	"github.com/quantmind-br/libmanifest/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

// cli holds the state shared by every command of one invocation
type cli struct {
	cfgFile string
	verbose bool
	v       *viper.Viper
	cfg     *config.Config
	log     *utils.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "libmanifest",
		Short: "Read and check library manifests",
		Long: `libmanifest finds, reads, validates and normalizes library manifests
(library.json, .library.json and library.properties).

A directory argument is searched for the manifest files in that order.`,
		Version:           version.Short(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.initConfig,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is ~/.libmanifest/config.yaml)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Verbose output")
	flags.StringP("format", "f", config.DefaultOutputFormat, "Output format (text, json, yaml)")
	flags.Bool("normalize", config.DefaultNormalize, "Normalize manifests after reading")
	flags.Bool("validate", config.DefaultValidate, "Reject manifests with validation errors")
	flags.Bool("clone", config.DefaultClone, "Process a copy instead of the parsed manifest")

	// Bind flags to viper
	_ = c.v.BindPFlag("output.format", flags.Lookup("format"))
	_ = c.v.BindPFlag("reader.normalize", flags.Lookup("normalize"))
	_ = c.v.BindPFlag("reader.validate", flags.Lookup("validate"))
	_ = c.v.BindPFlag("reader.clone", flags.Lookup("clone"))

	// Add subcommands
	rootCmd.AddCommand(c.newReadCmd())
	rootCmd.AddCommand(c.newFindCmd())
	rootCmd.AddCommand(c.newLintCmd())
	rootCmd.AddCommand(c.newScanCmd())
	rootCmd.AddCommand(c.newDoctorCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return rootCmd
}

// initConfig loads configuration and builds the logger. doctor and version
// run without a usable config.
func (c *cli) initConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "doctor" || cmd.Name() == "version" {
		c.log = utils.NewNopLogger()
		return nil
	}

	cfg, err := config.LoadWithViper(c.v, c.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg

	c.log = utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cmd.ErrOrStderr(),
		Verbose: c.verbose,
	})
	c.log.Debug().
		Str("config", c.v.ConfigFileUsed()).
		Str("format", cfg.Output.Format).
		Msg("Configuration loaded")

	return nil
}

func (c *cli) reader() *manifest.Reader {
	return manifest.NewReader(manifest.ReaderOptions{Logger: c.log.Zerolog()})
}

func (c *cli) printer(cmd *cobra.Command, root string) (*output.Printer, error) {
	format := config.DefaultOutputFormat
	if c.cfg != nil {
		format = c.cfg.Output.Format
	}
	return output.NewPrinter(output.PrinterOptions{
		Output: cmd.OutOrStdout(),
		Format: format,
		Root:   root,
	})
}

// pathArg returns the first argument, or the working directory
func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func (c *cli) newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read [path]",
		Short: "Read, validate and normalize a manifest",
		Long: `Reads the manifest at path, or the first manifest found in the directory
at path, and prints it after validation and normalization.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, file, err := c.reader().Read(cmd.Context(), pathArg(args), manifest.WithOptions(c.cfg.ReadOptions()))
			if err != nil {
				return err
			}

			p, err := c.printer(cmd, "")
			if err != nil {
				return err
			}
			return p.PrintManifest(file, m)
		},
	}
}

func (c *cli) newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find [dir]",
		Short: "Print the manifest file a directory resolves to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := c.reader().Find(cmd.Context(), pathArg(args))
			if err != nil {
				return err
			}

			p, err := c.printer(cmd, "")
			if err != nil {
				return err
			}
			return p.PrintPath(file)
		},
	}
}

func (c *cli) newLintCmd() *cobra.Command {
	var schema, strict bool

	cmd := &cobra.Command{
		Use:   "lint [path]",
		Short: "Report every validation error and warning of a manifest",
		Long: `Reads a manifest without processing it and lists all validation errors
and warnings. With --schema the types of well-known keys are checked too.

Exits with an error when the manifest has validation errors, or any issue
at all with --strict.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, file, err := c.reader().Read(cmd.Context(), pathArg(args), manifest.WithOptions(manifest.Options{}))
			if err != nil {
				return err
			}

			report := output.Report{File: file, Issues: manifest.GetIssues(raw)}
			if schema {
				report.Schema, err = manifest.CheckSchema(raw)
				if err != nil {
					return fmt.Errorf("schema check: %w", err)
				}
			}

			p, err := c.printer(cmd, "")
			if err != nil {
				return err
			}
			if err := p.PrintReport(report); err != nil {
				return err
			}

			switch {
			case len(report.Issues.Errors) > 0:
				return fmt.Errorf("%s: %d validation error(s)", file, len(report.Issues.Errors))
			case strict && report.HasProblems():
				return fmt.Errorf("%s: issues found in strict mode", file)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&schema, "schema", false, "Also check the types of well-known keys")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings and schema issues too")

	return cmd
}

func (c *cli) newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Find and check every library manifest under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := pathArg(args)

			scanner, err := app.NewScanner(app.ScannerOptions{
				Config:         c.cfg,
				Verbose:        c.verbose,
				Logger:         c.log,
				ProgressOutput: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			libs, err := scanner.Scan(cmd.Context(), root)
			if err != nil {
				return err
			}

			absRoot, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			p, err := c.printer(cmd, absRoot)
			if err != nil {
				return err
			}
			if err := p.PrintLibraries(libs); err != nil {
				return err
			}

			if s := app.Summarize(libs); s.Invalid+s.Errors > 0 {
				return fmt.Errorf("%d of %d libraries failed", s.Invalid+s.Errors, s.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntP("workers", "j", config.DefaultWorkers, "Number of concurrent workers")
	cmd.Flags().Bool("progress", config.DefaultProgress, "Show a progress bar")
	cmd.Flags().StringSlice("exclude", config.DefaultExcludePatterns, "Glob patterns to skip, relative to root")

	_ = c.v.BindPFlag("scan.workers", cmd.Flags().Lookup("workers"))
	_ = c.v.BindPFlag("scan.progress", cmd.Flags().Lookup("progress"))
	_ = c.v.BindPFlag("scan.exclude", cmd.Flags().Lookup("exclude"))

	return cmd
}

func (c *cli) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and environment",
		Long:  "Verifies that the configuration loads and that manifests can be read from the working directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Checking environment...")
			allPassed := true

			// Check 1: Configuration
			fmt.Fprint(out, "  Configuration: ")
			if _, err := config.LoadWithViper(c.v, c.cfgFile); err != nil {
				fmt.Fprintf(out, "FAILED (%v)\n", err)
				allPassed = false
			} else if used := c.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(out, "OK (%s)\n", used)
			} else {
				fmt.Fprintf(out, "OK (defaults, %s not found)\n", config.ConfigFilePath())
			}

			// Check 2: Working directory
			fmt.Fprint(out, "  Working directory: ")
			wd, err := os.Getwd()
			if err == nil && utils.IsDir(wd) {
				fmt.Fprintf(out, "OK (%s)\n", wd)
			} else {
				fmt.Fprintln(out, "FAILED")
				allPassed = false
			}

			// Check 3: Schema
			fmt.Fprint(out, "  Manifest schema: ")
			if _, err := manifest.CheckSchema(manifest.Manifest{}); err != nil {
				fmt.Fprintf(out, "FAILED (%v)\n", err)
				allPassed = false
			} else {
				fmt.Fprintln(out, "OK")
			}

			// Check 4: Manifest in the working directory, informational only
			fmt.Fprint(out, "  Manifest: ")
			if file, err := manifest.Find(cmd.Context(), "."); err == nil {
				fmt.Fprintf(out, "OK (%s)\n", file)
			} else {
				fmt.Fprintln(out, "WARN (none in working directory)")
			}

			fmt.Fprintln(out)
			if allPassed {
				fmt.Fprintln(out, "All checks passed!")
			} else {
				fmt.Fprintln(out, "Some checks failed.")
			}

			return nil
		},
	}
}

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			p, err := output.NewPrinter(output.PrinterOptions{Output: cmd.OutOrStdout(), Format: format})
			if err != nil {
				return err
			}
			return p.PrintVersion(version.Get())
		},
	}
}

// describeError prefixes manifest failures with their code
func describeError(err error) string {
	code := manifest.CodeOf(err)
	if code == "" {
		return "Error: " + err.Error()
	}
	if file := manifest.FileOf(err); file != "" && !strings.Contains(err.Error(), file) {
		return fmt.Sprintf("Error: %s: %s (%s)", code, err.Error(), file)
	}
	return fmt.Sprintf("Error: %s: %s", code, err.Error())
}
