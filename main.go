package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"social_dashboard/analytics"
	"social_dashboard/config"
	"social_dashboard/generator"
	"social_dashboard/logging"
	"social_dashboard/platform"
	"social_dashboard/publisher"
	"social_dashboard/scheduler"
	"social_dashboard/server"
	"social_dashboard/store"
)

func main() {
	configPath := flag.String("config", "config/config.json", "path to config.json")
	serve := flag.Bool("serve", false, "start the REST API server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	platformID := flag.String("platform", "", "platform to adapt for (CLI mode); empty means all")
	text := flag.String("text", "", "text to adapt (CLI mode); '-' reads stdin")
	raw := flag.Bool("raw", false, "CLI mode: score and analyse the text as-is instead of adapting it")
	asJSON := flag.Bool("json", false, "CLI mode: print variants as JSON")
	verbose := flag.Bool("v", false, "enable debug logs")
	flag.Parse()

	bootLogger := logging.NewTextLogger("info", os.Stderr)
	config.LoadEnv(bootLogger)
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	if *serve {
		if *addr != "" {
			cfg.ServerAddr = *addr
		}
		if err := runServer(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := runCLI(os.Stdout, *platformID, *text, *raw, *asJSON); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cfg config.Config) error {
	logger := logging.NewLogger(cfg.LogLevel)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llm, err := buildLLM(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	agent, err := generator.NewAgent(llm)
	if err != nil {
		return err
	}

	channel, err := buildChannel(cfg.Publish)
	if err != nil {
		return err
	}
	st := store.New()
	adapter := platform.NewAdapter(nil)
	metrics := server.NewMetrics()
	pub, err := publisher.New(st, channel, adapter, logger, publisher.WithObserver(metrics.ObservePublish))
	if err != nil {
		return err
	}
	sim := analytics.NewSimulator(nil, logger)

	sched, err := scheduler.New(cfg.Scheduler.Timezone, logger)
	if err != nil {
		return err
	}
	if err := sched.AddJob("publish-due", cfg.Scheduler.PublishCron, func(ctx context.Context) error {
		n, err := pub.PublishDue(ctx)
		if n > 0 {
			logger.WithField("published", n).Info("Published due posts")
		}
		return err
	}); err != nil {
		return err
	}
	if err := sched.AddJob("refresh-metrics", cfg.Scheduler.MetricsCron, func(context.Context) error {
		sim.Refresh(st)
		return nil
	}); err != nil {
		return err
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	srv, err := server.New(server.Deps{
		Store:     st,
		Publisher: pub,
		Agent:     agent,
		Provider:  cfg.LLM.Provider,
		Adapter:   adapter,
		Simulator: sim,
		Jobs:      sched,
		Metrics:   metrics,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"llm_provider": cfg.LLM.Provider,
		"webhook":      cfg.Publish.WebhookURL != "",
	}).Info("Dashboard configured")
	return srv.Run(ctx, cfg.ServerAddr)
}

func buildLLM(ctx context.Context, cfg config.LLMConfig) (generator.LLMClient, error) {
	return generator.NewLLM(ctx, &generator.LLMSettings{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
	})
}

func buildChannel(cfg config.PublishConfig) (publisher.Channel, error) {
	if cfg.WebhookURL != "" {
		return publisher.NewWebhookChannel(cfg.WebhookURL, nil)
	}
	return publisher.NewSimulatedChannel(cfg.SimulatedDelay(), cfg.FailureRate, nil), nil
}

// runCLI adapts text for one or all platforms and prints each variant with
// its score and findings.
func runCLI(out io.Writer, platformID, text string, raw, asJSON bool) error {
	if text == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		text = strings.TrimRight(string(b), "\n")
	}
	if text == "" {
		return fmt.Errorf("--text is required (or use --serve)")
	}

	ids := platform.IDs()
	if platformID != "" {
		if err := platform.Validate(platformID); err != nil {
			return err
		}
		ids = []string{platformID}
	}

	adapter := platform.NewAdapter(nil)
	variants := make([]platform.ContentVariant, 0, len(ids))
	for _, id := range ids {
		var (
			v   platform.ContentVariant
			err error
		)
		if raw {
			v, err = platform.Evaluate(id, text)
		} else {
			v, err = adapter.Variant(id, text)
		}
		if err != nil {
			return err
		}
		variants = append(variants, v)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(variants)
	}
	for _, v := range variants {
		prof, _ := platform.Lookup(v.PlatformID)
		fmt.Fprintf(out, "== %s (%d/%d chars, score %d)\n", prof.Name, v.CharacterCount, prof.TextLimit, v.Score)
		fmt.Fprintln(out, v.Text)
		if v.Perfect {
			fmt.Fprintln(out, "-- perfect content, nothing to improve")
		}
		for _, f := range v.Findings {
			fmt.Fprintf(out, "-- [%s] %s\n", f.Kind, f.Message)
		}
		fmt.Fprintln(out)
	}
	return nil
}
