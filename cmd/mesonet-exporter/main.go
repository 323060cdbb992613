package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/mesonet-exporter/internal/app"
	"github.com/chrissnell/mesonet-exporter/internal/constants"
	"github.com/chrissnell/mesonet-exporter/internal/log"
	"github.com/chrissnell/mesonet-exporter/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to YAML configuration file (defaults are used if it does not exist)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	interval := flag.Duration("interval", 0, "Export every interval (e.g. 15m); 0 runs once. Overrides the config file when given")
	listen := flag.String("listen", "", "Serve status, documents and metrics on this address (e.g. :8080)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mesonet-exporter %s\n", constants.Version)
		os.Exit(0)
	}

	// Load configuration
	cfgData, err := loadConfig(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "interval" {
			cfgData.Interval = *interval
		}
	})
	if *listen != "" {
		cfgData.Server.ListenAddr = *listen
	}

	// Set up logging
	err = log.InitWithOptions(log.Options{
		Debug:      *debug || cfgData.Log.Debug,
		File:       cfgData.Log.File,
		MaxSizeMB:  cfgData.Log.MaxSizeMB,
		MaxBackups: cfgData.Log.MaxBackups,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Infof("mesonet-exporter %s starting: %d metrics, output to %s", constants.Version, len(cfgData.Metrics), cfgData.Output.Dir)

	// Create and run the application
	application := app.New(cfgData, log.With("component", "exporter"))
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		log.Sync()
		os.Exit(1)
	}
}

func loadConfig(cfgFile string) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(cfgFile)

	cfgData, err := config.NewYAMLProvider(filename).LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}
	return cfgData, nil
}
