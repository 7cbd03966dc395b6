package cmd

import (
	"fmt"
	"image/color"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgreduce/internal/config"
	"github.com/AnyUserName/imgreduce/internal/logging"
	"github.com/AnyUserName/imgreduce/internal/profile"
)

var (
	version = "0.1.0"
	cfgFile string
	verbose bool

	// Populated by PersistentPreRunE before any command runs.
	cfg *config.Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "imgreduce",
	Short: "Recompress images locally at a chosen JPEG quality",
	Long: `imgreduce — re-encodes a photo or graphic as JPEG at the quality you pick,
entirely on this machine, and saves it next to the original name.

Transparent areas are flattened onto a background colour (white by default).
Settings come from flags, IMGREDUCE_* environment variables, or imgreduce.yaml.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./imgreduce.yaml, or $IMGREDUCE_CONFIG)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text or json)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imgreduce %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// setup loads configuration and builds the logger for the command about
// to run.
func setup(cmd *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = config.GetEnv(config.EnvPrefix+"_CONFIG", "")
	}
	v, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	c, err := config.ParseConfig(v)
	if err != nil {
		return err
	}
	l, err := logging.New(cmd.ErrOrStderr(), c.Log.Level, c.Log.Format, verbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	cfg, log = c, l
	if used := v.ConfigFileUsed(); used != "" {
		log.WithField("file", used).Debug("config loaded")
	}
	return nil
}

// settings are the effective encode parameters after merging the profile
// with explicit overrides.
type settings struct {
	profile    profile.Profile
	quality    int
	background color.NRGBA
}

func resolveSettings(c *config.Config) (settings, error) {
	prof := profile.Get(c.Profile)
	if !profile.Known(c.Profile) {
		log.WithField("profile", c.Profile).Warn("unknown profile, using default settings")
	}
	s := settings{profile: prof, quality: prof.Quality}
	if c.Quality > 0 {
		s.quality = c.Quality
	}
	hex := prof.Background
	if c.Background != "" {
		hex = c.Background
	}
	bg, err := config.ParseColor(hex)
	if err != nil {
		return settings{}, err
	}
	s.background = bg
	return s, nil
}
