package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"ec-simulator/internal/analysis"
	"ec-simulator/internal/config"
	"ec-simulator/internal/logger"
	"ec-simulator/internal/model"
	"ec-simulator/internal/simulation"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	log := logger.New(logger.Options{
		ServiceName: "ec-simulator-cli",
		Level:       logger.ParseLevel(os.Getenv("ECSIM_LOG_LEVEL")),
		Format:      "console",
		Output:      os.Stderr,
	})

	var err error
	switch os.Args[1] {
	case "simulate":
		err = cmdSimulate(log, os.Args[2:])
	case "plans":
		err = cmdPlans(log, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error(context.Background(), os.Args[1]+" failed", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli simulate --config examples/scenarios/default.yaml --out results/simulation.csv [--mode multi]")
	fmt.Println("  cli plans --config examples/scenarios/three-plans.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - simulate writes one CSV row per plan, month and marketplace")
	fmt.Println("  - plans runs the three plan tiers and prints the recommendation and alerts")
}

func loadConfig(path, mode string) (model.SimulationConfig, string, error) {
	s := &config.Scenario{}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return model.SimulationConfig{}, "", err
		}
		s = loaded
	}
	if mode != "" {
		s.Mode = mode
		if err := s.Validate(); err != nil {
			return model.SimulationConfig{}, "", err
		}
	}
	cfg, err := s.ToModel()
	return cfg, s.Name, err
}

func cmdSimulate(log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to scenario YAML (defaults are used when empty)")
	outPath := fs.String("out", "results/simulation.csv", "Output CSV path")
	mode := fs.String("mode", "", "Override the scenario mode: single or multi")
	bom := fs.Bool("bom", true, "Prefix the CSV with a UTF-8 byte order mark")
	_ = fs.Parse(args)

	cfg, name, err := loadConfig(*cfgPath, *mode)
	if err != nil {
		return err
	}

	res, err := simulation.New().Run(cfg)
	if err != nil {
		return err
	}
	if err := simulation.WriteRowsCSVFile(*outPath, res.Rows, simulation.CSVOptions{BOM: *bom}); err != nil {
		return err
	}

	ctx := log.WithFields(context.Background(), map[string]any{
		"scenario": name,
		"mode":     string(cfg.Mode),
		"rows":     len(res.Rows),
		"out":      *outPath,
	})
	log.Info(ctx, "simulation.written")

	overall := analysis.Overall(res.Rows)
	fmt.Printf("Wrote %d rows to %s\n", len(res.Rows), *outPath)
	fmt.Printf("Revenue=%d Margin=%d ROAS=%.2f MarginRate=%.1f%%\n",
		overall.Revenue, overall.ContributionMargin, overall.ROAS, overall.MarginRate*100)
	return nil
}

func cmdPlans(log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("plans", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to scenario YAML (defaults are used when empty)")
	_ = fs.Parse(args)

	cfg, name, err := loadConfig(*cfgPath, string(model.ModeMulti))
	if err != nil {
		return err
	}

	res, err := simulation.New().Run(cfg)
	if err != nil {
		return err
	}
	report := analysis.Analyze(res, analysis.DefaultPolicy())
	log.Info(log.WithFields(context.Background(), map[string]any{
		"scenario":    name,
		"recommended": string(report.Recommendation.Plan),
	}), "plans.evaluated")

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "plan\tvisits\trevenue\tad_spend\tmargin\troas\tmargin_rate")
	for _, p := range report.Plans {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.2f\t%.1f%%\n",
			p.Plan, p.Visits, p.Revenue, p.AdSpend, p.ContributionMargin, p.ROAS, p.MarginRate*100)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Recommended: %s\n", report.Recommendation.Plan)
	fmt.Printf("  %s\n", report.Recommendation.Rationale)
	if len(report.Recommendation.Ranked) > 0 {
		ranked := make([]string, 0, len(report.Recommendation.Ranked))
		for _, p := range report.Recommendation.Ranked {
			ranked = append(ranked, string(p))
		}
		fmt.Printf("  ranking: %s\n", strings.Join(ranked, " > "))
	}

	if len(report.Alerts) > 0 {
		fmt.Println()
		fmt.Println("Alerts:")
		for _, a := range report.Alerts {
			fmt.Printf("  [%s] %s\n", a.Severity, a.Message)
		}
	}
	return nil
}
