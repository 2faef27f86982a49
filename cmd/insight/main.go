package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"ec-simulator/internal/config"
	"ec-simulator/internal/insight"
	"ec-simulator/internal/logger"
)

func main() {
	period := flag.String("period", "daily", "Roll-up period: daily, weekly or monthly")
	modelName := flag.String("model", insight.DefaultModel, "Gemini model for commentary")
	top := flag.Int("top", 10, "Number of top pages to print")
	seed := flag.Int64("seed", 0, "Mock data seed (0 = ECSIM_MOCK_SEED or random)")
	flag.Parse()

	srv, err := config.LoadServer(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		ServiceName: "ec-simulator-insight",
		Level:       logger.ParseLevel(srv.LogLevel),
		Format:      "console",
		Output:      os.Stderr,
	})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, err := insight.ParsePeriod(*period)
	if err != nil {
		log.Error(ctx, "insight.bad_period", err)
		os.Exit(2)
	}

	s := *seed
	if s == 0 {
		s = srv.MockSeed
	}
	src := insight.NewMockSource(s)
	snap, err := src.Snapshot(ctx)
	if err != nil {
		log.Error(ctx, "insight.snapshot_failed", err)
		os.Exit(1)
	}
	dash := insight.BuildDashboard(snap, p, *top)

	fmt.Printf("Generated %s (%s)\n\n", dash.GeneratedAt.Format("2006-01-02 15:04"), dash.Period)
	for _, k := range dash.KPIs {
		fmt.Printf("%-16s %12.2f  (%+.2f)\n", k.Name, k.Value, k.Delta)
	}

	fmt.Println()
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "date\tusers\tsessions\trevenue\tengagement")
	for _, pt := range dash.Series {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\n", pt.Date, pt.Users, pt.Sessions, pt.Revenue, pt.EngagementRate)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "rank\tpage\tviews\tactive_users\tengagement")
	for _, pg := range dash.TopPages {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.2f\n", pg.Rank, pg.Path, pg.Views, pg.ActiveUsers, pg.EngagementRate)
	}
	_ = tw.Flush()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Info(ctx, "GEMINI_API_KEY not set; skipping commentary")
		return
	}

	client := insight.NewGeminiClient(srv.GeminiBaseURL, srv.CompletionTimeout, log)
	commentary, err := insight.NewAnalyzer(client).Analyze(ctx, apiKey, *modelName, insight.Rollup(snap.Series, p))
	if err != nil {
		log.Error(ctx, "insight.commentary_failed", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("UI:      %s\n", commentary.Agents.UI)
	fmt.Printf("SEO:     %s\n", commentary.Agents.SEO)
	fmt.Printf("Analyst: %s\n", commentary.Agents.Analyst)
	fmt.Println()
	tw = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "priority\ttask\tui\tseo\tanalyst\ttotal\tdetail")
	for _, m := range commentary.Matrix {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", m.Priority, m.Task, m.UIScore, m.SEOScore, m.AnalystScore, m.Total, m.Detail)
	}
	_ = tw.Flush()
}
