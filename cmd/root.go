package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/briandowns/spinner"
	"github.com/censys-research/uap2clickhouse/pkg/config"
	"github.com/censys-research/uap2clickhouse/pkg/uap"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var rootCmd = &cobra.Command{
	Use:   "uap2clickhouse [flags] <input-file>",
	Short: "turn uap-core regexes into ClickHouse regexp-tree dictionary sources",
	Long: `Reads a uap-core regexes document (https://github.com/ua-parser/uap-core) and
writes one file each for the device, os and user agent parsers, in the layout
ClickHouse expects for regexp_tree dictionaries.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvert,
}

var (
	logLevel      string
	configFile    = ""
	outFormat     = config.DefaultOutput
	outDir        = ""                          // defaults to the working directory
	deviceFile    = config.DefaultDeviceFile    // device parsers output name
	osFile        = config.DefaultOSFile        // os parsers output name
	userAgentFile = config.DefaultUserAgentFile // user agent parsers output name
	force         = false                       // overwrite existing outputs
	noColors      = false                       // don't display colored output
	noLinks       = false                       // don't display hyperlinks in the output
	showConf      = false                       // show the resolved configuration in yaml format and exit
)

func report(w io.Writer, format string, res *uap.Result) error {
	var ropt []string

	if noColors {
		ropt = append(ropt, "no-colors")
	}

	if noLinks {
		ropt = append(ropt, "no-links")
	}

	r := uap.NewReporter(w, ropt...)

	switch format {
	case "pretty", "table":
		r.Table(res)
	case "tree":
		r.Tree(res)
	case "json":
		return r.JSON(res)
	case "none", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	return nil
}

// loadConfig layers the config file, environment and flags. The positional
// input file, when given, wins over everything else.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	overrides := map[string]interface{}{}
	if len(args) > 0 {
		overrides["input"] = args[0]
	}

	conf, err := config.Load(configFile, cmd.Flags(), overrides)
	if err != nil {
		return nil, err
	}

	if used := config.ConfigFileUsed(); used != "" {
		log.Debugf("using config file %s", used)
	}

	setLogLevel(conf.GetLogLevel())
	return conf, nil
}

// newStatus returns a status callback driving a spinner on stderr, and a
// function to stop it. Nothing is drawn when stderr isn't a terminal.
func newStatus() (func(string), func()) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return func(message string) { log.Debug(message) }, func() {}
	}

	s := spinner.New(spinner.CharSets[21], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	statuscb := func(message string) {
		s.Suffix = " " + message
		if !s.Active() {
			s.Start()
		}
	}

	stopSpinner := func() {
		if s.Active() {
			s.Stop()
		}
	}

	return statuscb, stopSpinner
}

func convert(ctx context.Context, conf *config.Config) (*uap.Result, error) {
	settings, err := conf.Settings()
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	statuscb, stopSpinner := newStatus()
	defer stopSpinner()

	c := uap.New(uap.WithStatusCallback(statuscb))
	return c.Run(ctx, settings)
}

func runConvert(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig(cmd, args)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	if showConf {
		y, err := yaml.Marshal(conf)
		if err != nil {
			return fmt.Errorf("error marshalling config to yaml: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(y))
		return nil
	}

	if conf.InputFile == "" {
		return errors.New("no input file given")
	}

	res, err := convert(cmd.Context(), conf)
	if err != nil {
		return err
	}

	log.Infof("converted %d rules in %s", res.GetRules(), res.Duration)
	return report(cmd.OutOrStdout(), conf.GetOutput(), res)
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	case "fatal":
		log.SetLevel(log.FatalLevel)
	case "panic":
		log.SetLevel(log.PanicLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func initLogging() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
		PadLevelText:  true,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			return f.Function + ": ", fmt.Sprintf("%s:%d", f.File, f.Line)
		},
	})

	setLogLevel(logLevel)
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "L", "", "Log level (debug, info*, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to the configuration file (default: $XDG_CONFIG_HOME/uap2clickhouse/config.yaml)")

	rootCmd.PersistentFlags().StringVar(&outDir, "outdir", outDir, "Output directory in which to write device, os and user agent files (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&deviceFile, "device", deviceFile, "Output filename for the device parsers")
	rootCmd.PersistentFlags().StringVar(&osFile, "os", osFile, "Output filename for the os parsers")
	rootCmd.PersistentFlags().StringVar(&userAgentFile, "user-agent", userAgentFile, "Output filename for the user agent parsers")
	rootCmd.PersistentFlags().BoolVarP(&force, "force", "f", force, "Force overwrite of existing output files")
	rootCmd.PersistentFlags().StringVarP(&outFormat, "output", "o", outFormat, "Summary format (pretty / tree / json / none)")
	rootCmd.PersistentFlags().BoolVar(&noColors, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noLinks, "no-link", false, "Disable hyperlinks in output")

	rootCmd.Flags().BoolVar(&showConf, "showconf", showConf, "Show the resolved configuration in YAML format and exit")

	cobra.OnInitialize(initLogging)
}
