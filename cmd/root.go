package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tempusbreve/gce-metadata/internal/gce"
	"github.com/tempusbreve/gce-metadata/internal/report"
)

const envPrefix = "gce_metadata"

var ErrInvalidSelector = errors.New("invalid selector")

// metadataService is what the command needs from the metadata client.
type metadataService interface {
	gce.Fetcher
	Probe(ctx context.Context) error
}

type environment struct {
	connect  func(endpoint string, timeout time.Duration) metadataService
	hostname func() (string, error)
}

func defaultEnvironment() environment {
	return environment{
		connect: func(endpoint string, timeout time.Duration) metadataService {
			return gce.NewClient(gce.WithEndpoint(endpoint), gce.WithTimeout(timeout))
		},
		hostname: os.Hostname,
	}
}

type options struct {
	selected    []gce.Selector
	endpoint    string
	timeout     time.Duration
	format      string
	concurrency int
	logLevel    string

	service metadataService
}

var rootCmd = newRootCmd(defaultEnvironment())

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func newRootCmd(env environment) *cobra.Command {
	opts := &options{
		endpoint:    gce.DefaultEndpoint,
		timeout:     gce.DefaultTimeout,
		format:      report.FormatText,
		concurrency: 1,
		logLevel:    log.WarnLevel.String(),
	}

	cmd := &cobra.Command{
		Use:   "gce-metadata [flags]",
		Short: "Show Google Compute Engine instance metadata",
		Long: `Query the Compute Engine metadata server and print instance attributes.

With no flags every attribute is printed in a fixed order. Selector flags
print only the chosen attributes, in the order they are given.

Examples:
  # Full report
  gce-metadata

  # Project and instance id
  gce-metadata -p --instance-id

  # Attached disks as a table
  gce-metadata --disks --format table`,
		SilenceUsage: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				_ = cmd.Help()
				return fmt.Errorf("%w: %q", ErrInvalidSelector, args[0])
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			bindEnv(cmd)
			return setupLogger(cmd, opts.logLevel)
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}

			svc := env.connect(opts.endpoint, opts.timeout)
			if err := svc.Probe(cmd.Context()); err != nil {
				log.WithError(err).WithField("endpoint", opts.endpoint).Debug("environment probe failed")
				return fmt.Errorf("this tool must be run from inside a Google Compute Engine instance: %w", err)
			}

			opts.service = svc
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := report.NewPrinter(opts.format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			runner := report.NewRunner(opts.service, printer,
				report.WithHostname(env.hostname),
				report.WithConcurrency(opts.concurrency),
			)

			return runner.Run(cmd.Context(), opts.selected)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		_ = c.Help()
		return fmt.Errorf("%w: %w", ErrInvalidSelector, err)
	})

	addSelectorFlags(cmd, &opts.selected)

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.endpoint, "endpoint", opts.endpoint, "Metadata service base URL")
	pf.DurationVar(&opts.timeout, "timeout", opts.timeout, "Per-request timeout")
	pf.StringVar(&opts.format, "format", opts.format, "Output format (text, table)")
	pf.IntVar(&opts.concurrency, "concurrency", opts.concurrency, "Attributes fetched in parallel (output order is unchanged)")
	pf.StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level for diagnostics on stderr")

	return cmd
}

func (o *options) validate() error {
	if o.timeout <= 0 || o.timeout >= 10*time.Second {
		return fmt.Errorf("timeout must be between 0 and 10s, got %s", o.timeout)
	}
	if o.concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", o.concurrency)
	}
	if o.format != report.FormatText && o.format != report.FormatTable {
		return fmt.Errorf("unsupported output format %q", o.format)
	}
	return nil
}

// bindEnv fills configuration flags left unset on the command line from
// GCE_METADATA_* environment variables. Selector flags are never bound.
func bindEnv(cmd *cobra.Command) {
	cmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
		if !f.Changed && viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			if err := cmd.Flags().Set(f.Name, viper.GetString(f.Name)); err != nil {
				log.WithError(err).WithField("flag", f.Name).Warn("ignoring environment value")
			}
		}
	})
}

func setupLogger(cmd *cobra.Command, level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{
		DisableLevelTruncation: true,
	})

	return nil
}
