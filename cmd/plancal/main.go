package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/csiqueirasilva/diet-helper/internal/capture"
	"github.com/csiqueirasilva/diet-helper/internal/config"
	"github.com/csiqueirasilva/diet-helper/internal/dates"
	"github.com/csiqueirasilva/diet-helper/internal/icsfeed"
	appLog "github.com/csiqueirasilva/diet-helper/internal/log"
	"github.com/csiqueirasilva/diet-helper/internal/plan"
	"github.com/csiqueirasilva/diet-helper/internal/schedule"
	"github.com/csiqueirasilva/diet-helper/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	dataDir    string
	anchor     string

	once         bool
	shoppingWeek int
	icsPath      string
	snapshotPath string
}

func main() {
	appLog.Info("plancal starting", "version", "0.2.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI overrides.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.dataDir != "" {
		conf.DataDir = flags.dataDir
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"data_dir", conf.DataDir,
		"refresh", conf.RefreshCron,
		"horizon_days", conf.HorizonDays,
		"shopping_frequency_days", conf.ShoppingFrequencyDays,
		"anchor", flags.anchor,
	)

	switch {
	case flags.once, flags.shoppingWeek >= 0, flags.icsPath != "":
		if err := runExport(conf, flags); err != nil {
			appLog.Error("export failed", err)
			os.Exit(1)
		}
		return
	case flags.snapshotPath != "":
		if err := runSnapshot(conf, flags); err != nil {
			appLog.Error("snapshot failed", err)
			os.Exit(1)
		}
		return
	}

	runServe(conf, flags)
}

// runExport handles the one-shot modes: print the event list, print a
// week's shopping list, or write the iCalendar feed.
func runExport(conf *config.Config, flags flagConfig) error {
	result, err := buildResult(conf, flags.anchor)
	if err != nil {
		return err
	}

	if flags.icsPath != "" {
		feed := icsfeed.Render(result.Events, time.Now())
		if err := os.WriteFile(flags.icsPath, []byte(feed), 0o644); err != nil {
			return fmt.Errorf("write ics: %w", err)
		}
		appLog.Info("ics feed written", "path", flags.icsPath, "event_count", len(result.Events))
	}

	if flags.shoppingWeek >= 0 {
		week, ok := result.Week(flags.shoppingWeek)
		if !ok {
			return fmt.Errorf("week %d is outside the horizon", flags.shoppingWeek)
		}
		fmt.Printf("%s — compras em %s\n", week.Label, dates.FormatDayKey(dates.AddDays(week.Start, 6)))
		for _, line := range schedule.FormatShoppingLines(week.ShoppingList) {
			fmt.Println(line)
		}
	}

	if flags.once {
		for _, ev := range result.Events {
			label := ev.SlotTime
			if label == "" {
				label = string(ev.Category)
			}
			fmt.Printf("%s [%s] %s\n", dates.FormatDayKey(ev.Date), label, ev.Title)
		}
	}

	return nil
}

// runSnapshot serves the calendar page on conf.Listen just long enough to
// capture it to PNG via headless Chromium.
func runSnapshot(conf *config.Config, flags flagConfig) error {
	server := web.NewServer(conf, flags.anchor)

	httpServer := &http.Server{Addr: conf.Listen, Handler: server.Handler()}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("snapshot server failed", err, "listen", conf.Listen)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	url := "http://" + conf.Listen + "/"
	appLog.Info("capturing calendar page", "url", url, "output", flags.snapshotPath)

	return capture.CalendarPNG(context.Background(), capture.Options{
		URL:        url,
		OutputPath: flags.snapshotPath,
	})
}

// runServe is the default mode: HTTP server plus cron-driven refresh of
// the source documents.
func runServe(conf *config.Config, flags flagConfig) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	server := web.NewServer(conf, flags.anchor)
	server.Refresh()

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, server.Refresh); err != nil {
		appLog.Error("invalid refresh cron expression, periodic reload disabled", err, "refresh", conf.RefreshCron)
	} else {
		c.Start()
		defer c.Stop()
	}

	httpServer := &http.Server{Addr: conf.Listen, Handler: server.Handler()}
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("HTTP server failed", err, "listen", conf.Listen)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)

	appLog.Info("plancal exiting")
}

func buildResult(conf *config.Config, anchorInput string) (schedule.Result, error) {
	sources, err := plan.LoadSources(conf.DataDir)
	if err != nil {
		return schedule.Result{}, err
	}

	result := schedule.Build(schedule.BuildInput{
		Catalog:               sources.Catalog,
		Meals:                 sources.Meals,
		Today:                 time.Now(),
		AnchorInput:           anchorInput,
		HorizonDays:           conf.HorizonDays,
		ShoppingFrequencyDays: conf.ShoppingFrequencyDays,
		ShoppingAnchorInput:   conf.ShoppingAnchorDate,
		PrepTasks:             conf.PrepTasks,
	})

	if !result.PlanFound {
		appLog.Info("plan catalog is empty; derived outputs are empty")
	}
	return result, nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/plancal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.dataDir, "data", "", "Data directory with meal-plan.json and meals.json (overrides config)")
	flag.StringVar(&cfg.anchor, "anchor", "", "Anchor date (YYYY-MM-DD); defaults to the most recent Sunday")
	flag.BoolVar(&cfg.once, "once", false, "Print the materialized event list and exit")
	flag.IntVar(&cfg.shoppingWeek, "shopping", -1, "Print week N's shopping list and exit")
	flag.StringVar(&cfg.icsPath, "ics", "", "Write the iCalendar feed to the given path and exit")
	flag.StringVar(&cfg.snapshotPath, "snapshot", "", "Capture the calendar page to the given PNG path and exit")

	flag.Parse()

	// Normalize whitespace-only values from shell quoting.
	cfg.anchor = strings.TrimSpace(cfg.anchor)

	return cfg
}
