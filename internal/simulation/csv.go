package simulation

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// utf8BOM lets spreadsheet tools detect the encoding of exported files.
const utf8BOM = "\ufeff"

// CSVHeader is the exported column order; names match the row fields.
var CSVHeader = []string{
	"plan",
	"month",
	"month_label",
	"marketplace",
	"seasonality_index",
	"visits",
	"cvr",
	"revenue",
	"cogs",
	"commission",
	"ad_spend",
	"contribution_margin",
	"commission_rate",
}

type CSVOptions struct {
	BOM bool
}

func WriteRowsCSV(out io.Writer, rows []Row, opts CSVOptions) error {
	if opts.BOM {
		if _, err := io.WriteString(out, utf8BOM); err != nil {
			return err
		}
	}

	w := csv.NewWriter(out)
	if err := w.Write(CSVHeader); err != nil {
		return err
	}

	for _, r := range rows {
		rec := []string{
			string(r.Plan),
			strconv.Itoa(r.Month),
			r.MonthLabel,
			string(r.Marketplace),
			fmtFloat(r.SeasonalityIndex),
			strconv.FormatInt(r.Visits, 10),
			fmtFloat(r.CVR),
			strconv.FormatInt(r.Revenue, 10),
			strconv.FormatInt(r.COGS, 10),
			strconv.FormatInt(r.Commission, 10),
			strconv.FormatInt(r.AdSpend, 10),
			strconv.FormatInt(r.ContributionMargin, 10),
			fmtFloat(r.CommissionRate),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteRowsCSVFile writes the table to path, creating parent directories.
func WriteRowsCSVFile(path string, rows []Row, opts CSVOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteRowsCSV(f, rows, opts); err != nil {
		return err
	}
	return f.Close()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
