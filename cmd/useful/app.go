package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/nathangeffen/libuseful/pkg/array"
	"github.com/nathangeffen/libuseful/pkg/config"
	"github.com/nathangeffen/libuseful/pkg/csv"
	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/logger"
	"github.com/nathangeffen/libuseful/pkg/metrics"
	"github.com/nathangeffen/libuseful/pkg/observability"
	"github.com/nathangeffen/libuseful/pkg/profiling"
)

const envPrefix = "USEFUL"

// app holds the state shared by every subcommand.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	shutdown   func(context.Context) error
	restoreLog func()

	profileTypes string
	profileDir   string
	profiler     *profiling.Profiler
}

func newApp() *app {
	return &app{v: viper.New()}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "useful",
		Short: "useful - CSV, typed table and matrix toolkit",
		Long: `useful reads delimiter-separated files, validates their shape, and converts
them into typed tables, numeric matrices, or columnar formats such as Parquet.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.reportMetrics(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML configuration file")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("delimiter", ",", "Cell delimiter, a single byte")
	flags.Bool("header", true, "Treat the first row as a header")
	flags.Bool("trace", false, "Export trace spans to stderr")
	flags.Bool("metrics", false, "Print a metrics snapshot to stderr when the command finishes")
	flags.StringVar(&a.profileTypes, "profile", "", "Comma separated pprof profiles to capture (cpu, memory, block, mutex, goroutine, trace, all)")
	flags.StringVar(&a.profileDir, "profile-dir", "./profiles", "Directory for profile output")

	a.bind(flags.Lookup("log-level"), "observability.log_level")
	a.bind(flags.Lookup("delimiter"), "csv.delimiter")
	a.bind(flags.Lookup("header"), "csv.has_header")
	a.bind(flags.Lookup("trace"), "observability.enable_tracing")
	a.bind(flags.Lookup("metrics"), "observability.enable_metrics")

	root.AddCommand(
		versionCommand(),
		a.validateCommand(),
		a.convertCommand(),
		a.matrixCommand(),
		a.configCommand(),
	)
	return root
}

// bind routes a flag into a configuration key. A flag only overrides the
// file and environment when it is set on the command line.
func (a *app) bind(flag *pflag.Flag, key string) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// setup resolves the configuration (defaults, then the config file, then
// USEFUL_* environment variables, then flags) and starts logging and tracing.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.NewDefaultConfig("useful")
	if a.configPath != "" {
		loaded, err := config.LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	base, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to encode configuration")
	}
	a.v.SetConfigType("yaml")
	if err := a.v.ReadConfig(bytes.NewReader(base)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to load configuration")
	}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.Unmarshal(cfg); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to apply flags and environment")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	l, err := logger.New(logger.Config{
		Level:    cfg.Observability.LogLevel,
		Encoding: cfg.Observability.LogEncoding,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to configure logging")
	}
	a.restoreLog = logger.ReplaceGlobal(l.With(zap.String("command", cmd.Name())))

	if cfg.Observability.EnableTracing {
		tc := observability.DefaultTracingConfig(cfg.Observability.ServiceName)
		tc.ServiceVersion = version
		shutdown, err := observability.InitTracing(tc, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		a.shutdown = shutdown
	}

	if a.profileTypes != "" {
		types, err := profiling.ParseTypes(a.profileTypes)
		if err != nil {
			return err
		}
		pc := profiling.DefaultProfileConfig()
		pc.Types = types
		pc.OutputDir = a.profileDir
		p := profiling.NewProfiler(pc)
		if err := p.Start(); err != nil {
			return err
		}
		a.profiler = p
	}
	return nil
}

// close stops profiling, flushes spans and restores the logger.
func (a *app) close(ctx context.Context) error {
	var err error
	if a.profiler != nil {
		_, err = a.profiler.Stop()
		a.profiler = nil
	}
	if a.shutdown != nil {
		if serr := a.shutdown(ctx); serr != nil && err == nil {
			err = serr
		}
		a.shutdown = nil
	}
	if a.restoreLog != nil {
		_ = logger.Sync()
		a.restoreLog()
		a.restoreLog = nil
	}
	return err
}

func (a *app) reportMetrics(w io.Writer) error {
	if a.cfg == nil || !a.cfg.Observability.EnableMetrics {
		return nil
	}
	snapshot, err := metrics.Snapshot()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to gather metrics")
	}

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s %g\n", k, snapshot[k])
	}
	return nil
}

func (a *app) policy() array.Policy {
	b := a.cfg.Buffer
	return array.Policy{
		InitialCapacity:   b.InitialCapacity,
		GrowthNumerator:   b.GrowthNumerator,
		GrowthDenominator: b.GrowthDenominator,
		MaxCapacity:       b.MaxCapacity,
	}
}

func (a *app) readOptions() csv.ReadOptions {
	c := a.cfg.CSV
	return csv.ReadOptions{
		HasHeader:      c.HasHeader,
		Delimiter:      c.DelimiterByte(),
		Quote:          c.QuoteByte(),
		TrimCR:         c.TrimCR,
		SkipBlankLines: c.SkipBlankLines,
		Policy:         a.policy(),
	}
}

func (a *app) writeOptions() (csv.WriteOptions, error) {
	c := a.cfg.CSV
	mode, err := csv.ParseQuoteMode(c.QuoteMode)
	if err != nil {
		return csv.WriteOptions{}, err
	}
	return csv.WriteOptions{
		Delimiter: c.DelimiterByte(),
		Quote:     c.QuoteByte(),
		Mode:      mode,
		CRLF:      c.CRLF,
	}, nil
}
