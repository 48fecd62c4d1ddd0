// Command tetraview opens a window showing a glTF model, orbiting the camera around it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/solarlune/tetraview"
)

func main() {

	var (
		configPath string
		preset     string
		model      string
		headless   bool
		verbose    bool
		hcfg       tetraview.HeadlessConfig
	)

	flag.StringVar(&configPath, "config", "", "Path to a TOML config file, applied over the preset.")
	flag.StringVar(&preset, "preset", "default", "Config preset to start from ("+strings.Join(tetraview.PresetNames(), ", ")+").")
	flag.StringVar(&model, "model", "", "Model to load, relative to the asset directory; overrides the config.")
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", tetraview.TickRate, "Tick rate in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run until the model loads).")
	flag.BoolVar(&verbose, "v", false, "Log debug output.")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath, preset, model)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	options := []tetraview.Option{tetraview.WithLogger(logger)}
	if headless {
		options = append(options, tetraview.WithSurface(&tetraview.NopSurface{}))
	}

	viewer, err := tetraview.New(cfg, options...)
	if err != nil {
		var capErr *tetraview.CapabilityError
		if errors.As(err, &capErr) {
			fmt.Fprintln(os.Stderr, "tetraview: no usable graphics backend")
			for _, diag := range capErr.Diagnostics {
				fmt.Fprintln(os.Stderr, "  "+diag)
			}
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	if headless {
		hcfg.StopWhenLoaded = hcfg.Ticks == 0
		if err := viewer.RunHeadless(ctx, hcfg); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger.Info("headless run finished", "ticks", viewer.Ticks(), "renders", viewer.Viewport.Renders(), "load", viewer.Load.State())
		if viewer.Load.State() == tetraview.LoadFailed {
			os.Exit(1)
		}
		return
	}

	if err := viewer.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

}

// loadConfig starts from the named preset, applies the config file if there is one, and then the model override.
func loadConfig(configPath, preset, model string) (tetraview.Config, error) {

	cfg, err := tetraview.Preset(preset)
	if err != nil {
		return cfg, err
	}

	if configPath != "" {
		if cfg, err = tetraview.LoadConfigFile(configPath, cfg); err != nil {
			return cfg, err
		}
	}

	if model != "" {
		cfg.ModelPath = model
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}

	return cfg, nil

}
