// Package options resolves process-level runtime options from command-line
// flags and CITYCAM_* environment variables. Camera settings live in the yaml
// settings file handled by internal/config; these options only say where that
// file is and how to set up the sandbox around it.
package options

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CITYCAM_LOG_LEVEL.
const EnvPrefix = "CITYCAM"

const (
	minWindowWidth  = 320
	minWindowHeight = 240
)

// Options are the resolved runtime options.
type Options struct {
	SettingsPath  string
	LogLevel      string
	NoColor       bool
	WindowWidth   int
	WindowHeight  int
	Seed          int64
	Vehicles      int
	Pedestrians   int
	Trains        int
	WatchSettings bool
	ShowStats     bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("settings", "citycam.yaml")
	v.SetDefault("log-level", "info")
	v.SetDefault("no-color", false)
	v.SetDefault("width", 1280)
	v.SetDefault("height", 720)
	v.SetDefault("seed", 1)
	v.SetDefault("vehicles", 40)
	v.SetDefault("pedestrians", 60)
	v.SetDefault("trains", 2)
	v.SetDefault("watch", true)
	v.SetDefault("stats", false)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("citycam", pflag.ContinueOnError)
	fs.StringP("settings", "s", "citycam.yaml", "camera settings file (yaml)")
	fs.String("log-level", "info", "trace, debug, info, warn or error")
	fs.Bool("no-color", false, "disable colored log output")
	fs.Int("width", 1280, "window width in pixels")
	fs.Int("height", 720, "window height in pixels")
	fs.Int64("seed", 1, "city random seed")
	fs.Int("vehicles", 40, "road vehicles to spawn")
	fs.Int("pedestrians", 60, "pedestrians to spawn")
	fs.Int("trains", 2, "trains on the elevated loop")
	fs.Bool("watch", true, "reload the settings file when it changes on disk")
	fs.Bool("stats", false, "show the frame statistics overlay at start")
	return fs
}

// Load parses args (without the program name) and the environment. Flags win
// over environment variables, which win over defaults. A -h/--help request
// returns pflag.ErrHelp.
func Load(args []string) (*Options, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	o := &Options{
		SettingsPath:  v.GetString("settings"),
		LogLevel:      v.GetString("log-level"),
		NoColor:       v.GetBool("no-color"),
		WindowWidth:   v.GetInt("width"),
		WindowHeight:  v.GetInt("height"),
		Seed:          v.GetInt64("seed"),
		Vehicles:      v.GetInt("vehicles"),
		Pedestrians:   v.GetInt("pedestrians"),
		Trains:        v.GetInt("trains"),
		WatchSettings: v.GetBool("watch"),
		ShowStats:     v.GetBool("stats"),
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Options) validate() error {
	if o.SettingsPath == "" {
		return fmt.Errorf("settings path must not be empty")
	}
	if o.WindowWidth < minWindowWidth || o.WindowHeight < minWindowHeight {
		return fmt.Errorf("window size %dx%d is below the %dx%d minimum",
			o.WindowWidth, o.WindowHeight, minWindowWidth, minWindowHeight)
	}
	if o.Vehicles < 0 || o.Pedestrians < 0 || o.Trains < 0 {
		return fmt.Errorf("entity counts must not be negative")
	}
	return nil
}
