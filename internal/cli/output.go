package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"citypulse/internal/domain/entity"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// render writes v as JSON, or calls text for the human form.
func (s *session) render(w io.Writer, v any, text func(io.Writer) error) error {
	if s.output == outputJSON {
		return writeJSON(w, v)
	}
	return text(w)
}

func writeArticles(w io.Writer, articles []entity.Article) error {
	if len(articles) == 0 {
		_, err := fmt.Fprintln(w, "No articles.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSOURCE\tTITLE\tURL")
	for _, a := range articles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Date, a.Source, a.Title, a.URL)
	}
	return tw.Flush()
}

func writeAlerts(w io.Writer, alerts []entity.Alert) error {
	if len(alerts) == 0 {
		_, err := fmt.Fprintln(w, "No active alerts.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEVERITY\tTYPE\tCITY\tTITLE")
	for _, a := range alerts {
		city := a.City
		if city == "" {
			city = "(all)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Severity, a.Type, city, a.Title)
	}
	return tw.Flush()
}
