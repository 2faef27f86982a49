package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"ec-simulator/internal/analysis"
	"ec-simulator/internal/config"
	"ec-simulator/internal/model"
	"ec-simulator/internal/simulation"
)

// Demo:
// - Start from the built-in defaults (or a scenario file)
// - Run every enabled marketplace for twelve months
// - Print the first rows and the executive summary
func main() {
	cfgPath := flag.String("config", "", "Path to scenario YAML (optional)")
	n := flag.Int("n", 12, "Number of rows to print")
	outCSV := flag.String("out", "", "Optional path to write the full CSV (e.g. results/simulation.csv)")
	flag.Parse()

	cfg := model.DefaultConfig()
	if *cfgPath != "" {
		s, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		if cfg, err = s.ToModel(); err != nil {
			panic(err)
		}
	}

	res, err := simulation.New().Run(cfg)
	if err != nil {
		panic(err)
	}

	rows := res.Rows
	if *n > 0 && *n < len(rows) {
		rows = rows[:*n]
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "plan\tmonth\tmarketplace\tvisits\tcvr\trevenue\tcommission\tad_spend\tmargin")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.4f\t%d\t%d\t%d\t%d\n",
			r.Plan, r.MonthLabel, r.Marketplace.DisplayName(), r.Visits, r.CVR,
			r.Revenue, r.Commission, r.AdSpend, r.ContributionMargin)
	}
	_ = tw.Flush()

	overall := analysis.Overall(res.Rows)
	fmt.Println()
	fmt.Printf("Total revenue:       %d\n", overall.Revenue)
	fmt.Printf("Contribution margin: %d (%.1f%%)\n", overall.ContributionMargin, overall.MarginRate*100)
	fmt.Printf("ROAS:                %.2f\n", overall.ROAS)

	if *outCSV != "" {
		if err := simulation.WriteRowsCSVFile(*outCSV, res.Rows, simulation.CSVOptions{BOM: true}); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(res.Rows), *outCSV)
	}
}
