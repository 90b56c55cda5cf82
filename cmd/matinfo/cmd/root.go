package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thisMagpie/nmatrix/cache"
	"github.com/thisMagpie/nmatrix/internal/logger"
	"github.com/thisMagpie/nmatrix/matlab"
)

type rootOpts struct {
	cfgFile   string
	colorMode string
}

var rootOpt rootOpts

const (
	colorModeNever  = "never"
	colorModeAlways = "always"

	keyDebug      = "debug"
	keyStrict     = "strict"
	keyMaxDepth   = "max-depth"
	keyMaxInflate = "max-inflate"
	keyCacheSize  = "cache-size"
)

var longRootCmdDescription = `matinfo reads MATLAB Level 5 .mat files (optionally wrapped in xz or gzip)
and lists, prints, fingerprints or exports the numeric variables they hold.
`

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "matinfo",
	Short:         "Inspect MATLAB .mat files",
	Long:          longRootCmdDescription,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logrus.Errorf("matinfo: %v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(NewListCmd(), NewShowCmd(), NewExportCmd(), NewVersionCmd())

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootOpt.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&rootOpt.colorMode, "color", colorModeAlways, fmt.Sprintf("set the log color mode, the possible values can be %v", []string{colorModeNever, colorModeAlways}))
	flags.BoolP(keyDebug, "d", false, "turn on debug mode")
	flags.Bool(keyStrict, false, "reject files without a MI/IM byte order marker or a MATLAB 5.0 header")
	flags.Int(keyMaxDepth, 4, "maximum nesting of compressed elements")
	flags.Int64(keyMaxInflate, 1<<30, "maximum inflated size of one compressed element, in bytes")
	flags.Int(keyCacheSize, cache.DefaultSize, "number of decoded files kept in memory")
	for _, k := range []string{keyDebug, keyStrict, keyMaxDepth, keyMaxInflate, keyCacheSize} {
		_ = viper.BindPFlag(k, flags.Lookup(k))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if rootOpt.cfgFile != "" {
		viper.SetConfigFile(rootOpt.cfgFile)
	}
	viper.SetEnvPrefix("MATINFO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	logger.Init(logger.LogOptions{
		Verbose:      viper.GetBool(keyDebug),
		DisableColor: rootOpt.colorMode == colorModeNever,
		Output:       os.Stderr,
	})

	if rootOpt.cfgFile != "" {
		if err := viper.ReadInConfig(); err != nil {
			logrus.Warnf("failed to read config %s: %v", rootOpt.cfgFile, err)
		}
	}
}

// decodeOptions turns the configuration into reader options.
func decodeOptions() []matlab.Option {
	opts := []matlab.Option{
		matlab.WithMaxDepth(viper.GetInt(keyMaxDepth)),
		matlab.WithMaxInflatedSize(viper.GetInt64(keyMaxInflate)),
		matlab.WithLogger(logrus.WithField("component", "matlab")),
	}
	if viper.GetBool(keyStrict) {
		opts = append(opts, matlab.WithStrictByteOrder(), matlab.WithStrictHeader())
	}
	return opts
}

func newLoader() (*cache.Loader, error) {
	return cache.New(viper.GetInt(keyCacheSize), decodeOptions()...)
}

// reportErrors logs the element failures of a file and returns how many there were.
func reportErrors(path string, f *matlab.File) int {
	errs := f.Errors()
	for _, e := range errs {
		logrus.Warnf("%s: %v", path, e)
	}
	return len(errs)
}
