package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/redking/config"
	"github.com/lixenwraith/redking/store"
)

// app carries state shared by subcommands
type app struct {
	configPath string
	debug      bool

	// flag overrides, applied only when set
	storeKind   string
	storePath   string
	mediaDir    string
	maxAttempts int
	monitor     bool
	noPacing    bool
	webhookURL  string

	cfg     config.Config
	logger  *zap.Logger
	logFile *os.File
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "redking",
		Short: "Evolve host/parasite simulations into music and images",
		Long: `redking repeatedly picks simulation parameters, either fresh or inherited
from well-liked earlier runs, simulates a host/parasite population, and turns
the surviving strains into an audio track and a trace image.

Runs that collapse to a single strain or go extinct are discarded.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
			if a.logFile != nil {
				_ = a.logFile.Close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "TOML config file")
	pf.BoolVar(&a.debug, "debug", false, "Write a debug log to "+logDir+"/"+logFileName)
	pf.StringVar(&a.storeKind, "store", "", "Record store: memory, toml or sqlite")
	pf.StringVar(&a.storePath, "store-path", "", "Record store file")

	root.AddCommand(
		a.runCmd(),
		a.voteCmd(),
		a.fitnessCmd(),
		a.lineageCmd(),
		a.exportCmd(),
		a.sampleCmd(),
	)
	return root
}

// init loads configuration, applies flag overrides and builds the logger
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.StoreKind = a.storeKind
	}
	if flags.Changed("store-path") {
		cfg.StorePath = a.storePath
	}
	if flags.Changed("media-dir") {
		cfg.MediaDir = a.mediaDir
	}
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts = a.maxAttempts
	}
	if flags.Changed("monitor") {
		cfg.Monitor = a.monitor
	}
	if flags.Changed("webhook") {
		cfg.WebhookURL = a.webhookURL
	}
	if a.noPacing {
		cfg.StepPacing = 0
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	// the monitor owns the terminal, so console logging is silenced while it runs
	quiet := cmd.Name() == "run" && cfg.Monitor
	logger, logFile, err := setupLogging(a.debug, quiet)
	if err != nil {
		return err
	}
	a.logger, a.logFile = logger, logFile
	return nil
}

// openStore builds and initializes the configured store
func (a *app) openStore(cmd *cobra.Command) (store.Store, error) {
	s, err := store.NewStore(a.cfg.StoreKind, a.cfg.StorePath)
	if err != nil {
		return nil, err
	}
	if err := s.Init(cmd.Context()); err != nil {
		_ = store.CloseIfSupported(s)
		return nil, fmt.Errorf("open %s store: %w", a.cfg.StoreKind, err)
	}
	return s, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
