package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/redking/audio"
	"github.com/lixenwraith/redking/cost"
	"github.com/lixenwraith/redking/driver"
	"github.com/lixenwraith/redking/evolve"
	"github.com/lixenwraith/redking/model"
	"github.com/lixenwraith/redking/monitor"
	"github.com/lixenwraith/redking/parameter"
	"github.com/lixenwraith/redking/publish"
	"github.com/lixenwraith/redking/runloop"
	"github.com/lixenwraith/redking/store"
	"github.com/lixenwraith/redking/trace"
)

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate runs until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&a.mediaDir, "media-dir", "", "Directory for audio and images")
	f.IntVar(&a.maxAttempts, "max-attempts", 0, "Stop after this many attempts (0 runs forever)")
	f.BoolVar(&a.monitor, "monitor", false, "Show the live terminal monitor")
	f.BoolVar(&a.noPacing, "no-pacing", false, "Step the simulation without delay")
	f.StringVar(&a.webhookURL, "webhook", "", "Publish finished runs to this URL")
	return cmd
}

func (a *app) run(ctx context.Context, cmd *cobra.Command) error {
	cfg := a.cfg
	log := a.logger

	s, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer store.CloseIfSupported(s)

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	var mon *monitor.Monitor
	if cfg.Monitor {
		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		mon = monitor.New(screen)
	}

	dcfg := driver.Config{
		TimeLength:  cfg.TimeLength,
		SampleRate:  cfg.SampleRate,
		PreRunSteps: cfg.PreRunSteps,
		MicroSteps:  cfg.MicroSteps,
		MinStrains:  parameter.MinParasiteStrains,
	}
	blips := audio.NewBlipRenderer(cfg.SampleRate, cfg.BarDuration)
	tr := trace.New(parameter.TraceWidth, dcfg.BarPairs(blips.BarLength())*cfg.MicroSteps)

	opts := []driver.Option{
		driver.WithPacer(driver.SleepPacer(cfg.StepPacing)),
		driver.WithLogger(log.Named("driver")),
	}
	if mon != nil {
		opts = append(opts, driver.WithObserver(mon))
	}

	selector := evolve.NewSelector(s, rng, log.Named("select"))
	selector.RandomProbability = cfg.RandomProbability
	selector.SetAcceptProbability(cfg.AcceptProbability)

	mutator := cost.NewMutator(rng)
	mutator.Rate = cfg.MutationRate
	mutator.StdDev = cfg.MutationStdDev

	var publisher publish.Publisher = publish.NewLogPublisher(log.Named("publish"))
	if cfg.WebhookURL != "" {
		publisher = publish.NewWebhookPublisher(cfg.WebhookURL, log.Named("publish"))
	}

	deps := runloop.Deps{
		Store:     s,
		Tracker:   evolve.NewFitnessTracker(s, log.Named("fitness")),
		Selector:  selector,
		Mutator:   mutator,
		Recorder:  evolve.NewRecorder(s),
		NewModel:  func(p cost.Params) driver.Simulation { return model.New(p, rng) },
		Driver:    driver.New(dcfg, blips, tr, opts...),
		Encoder:   audio.NewFileEncoder(cfg.MasterVolume, cfg.LameBinary, log.Named("encode")),
		Publisher: publisher,
		Logger:    log,
	}
	if mon != nil {
		deps.Observer = mon
	}

	loop := runloop.New(deps, runloop.Settings{
		MediaDir:    cfg.MediaDir,
		SiteURL:     cfg.SiteURL,
		SampleRate:  cfg.SampleRate,
		TimeLength:  cfg.TimeLength,
		Magnify:     cfg.Magnify,
		MaxAttempts: cfg.MaxAttempts,
	})

	log.Info("starting",
		zap.String("store", cfg.StoreKind),
		zap.String("media", cfg.MediaDir),
		zap.Int("max_attempts", cfg.MaxAttempts),
		zap.Bool("monitor", mon != nil))

	g, gctx := errgroup.WithContext(ctx)
	runCtx, finished := context.WithCancel(gctx)
	defer finished()

	g.Go(func() error {
		defer finished()
		return loop.Run(runCtx)
	})
	if mon != nil {
		g.Go(func() error {
			return mon.Run(runCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, monitor.ErrQuit) {
		return err
	}
	return nil
}
