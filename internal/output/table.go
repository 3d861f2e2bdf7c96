package output

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/quotafence/quotafence/internal/core"
)

// QuotaStatusView is the CLI projection of one quota answer.
type QuotaStatusView struct {
	Policy    string `json:"policy" yaml:"policy"`
	Subject   string `json:"subject" yaml:"subject"`
	Allowed   bool   `json:"allowed" yaml:"allowed"`
	Remaining int    `json:"remaining" yaml:"remaining"`
}

// FormatQuotaStatus renders a single quota answer.
func FormatQuotaStatus(format Format, view QuotaStatusView) (string, error) {
	switch format {
	case FormatJSON:
		return marshalJSON(view)
	case FormatYAML:
		return marshalYAML(view)
	default:
		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Policy", "Subject", "Allowed", "Remaining"})
		t.AppendRow(table.Row{view.Policy, view.Subject, view.Allowed, view.Remaining})
		return t.Render(), nil
	}
}

// FormatQuotaRecords renders stored quota counters.
func FormatQuotaRecords(format Format, records []core.QuotaRecord) (string, error) {
	switch format {
	case FormatJSON:
		return marshalJSON(records)
	case FormatYAML:
		return marshalYAML(records)
	default:
		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Key", "Count", "Expires At"})
		for _, record := range records {
			expiry := "-"
			if record.ExpiresAt != nil {
				expiry = record.ExpiresAt.UTC().Format(time.RFC3339)
			}
			t.AppendRow(table.Row{record.Key, record.Count, expiry})
		}
		if len(records) == 0 {
			t.AppendFooter(table.Row{"(no stored quota counters)", "", ""})
		}
		return t.Render(), nil
	}
}

// FormatFetchResult renders a fetch outcome.
func FormatFetchResult(format Format, result *core.FetchResult) (string, error) {
	if result == nil {
		return "", nil
	}

	switch format {
	case FormatJSON:
		return marshalJSON(result)
	case FormatYAML:
		return marshalYAML(result)
	default:
		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"OK", "Status", "Detail"})
		detail := result.Err
		if result.OK {
			detail = fmt.Sprintf("%d bytes", len(result.Data))
		}
		t.AppendRow(table.Row{result.OK, result.Status, detail})
		return t.Render(), nil
	}
}
