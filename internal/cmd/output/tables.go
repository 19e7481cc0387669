package output

import (
	"strconv"
	"strings"

	"github.com/agentstation/dogsync/pkg/catalog"
	"github.com/agentstation/dogsync/pkg/reconcile"
	"github.com/agentstation/dogsync/pkg/report"
)

// PlanTable lists every planned action, deletes first.
func PlanTable(plan *reconcile.Plan) Data {
	data := Data{
		Headers:         []string{"action", "path", "detail"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft},
	}
	for _, a := range plan.Actions() {
		detail := a.SourceURL()
		switch a.Kind {
		case reconcile.KindSkip:
			detail = a.Reason
		case reconcile.KindDelete:
			if a.Recycle {
				detail = "to recycle bin"
			} else {
				detail = "permanently"
			}
		}
		data.Rows = append(data.Rows, []string{a.Kind.String(), a.Path, detail})
	}
	return data
}

// BreedsTable lists breeds with their sub-breeds.
func BreedsTable(tax catalog.Taxonomy) Data {
	data := Data{
		Headers:         []string{"breed", "sub_breeds", "count"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight},
	}
	for _, b := range tax {
		data.Rows = append(data.Rows, []string{
			b.Name,
			strings.Join(b.SubBreeds, ", "),
			strconv.Itoa(len(b.SubBreeds)),
		})
	}
	return data
}

// SummaryTable renders the summary counts of a report.
func SummaryTable(r *report.Report) Data {
	s := r.Summary
	rows := []struct {
		name  string
		value int
	}{
		{"created", s.Created},
		{"overwritten", s.Overwritten},
		{"skipped", s.Skipped},
		{"deleted", s.Deleted},
		{"succeeded", s.Succeeded},
		{"failed", s.Failed},
		{"total", s.Total},
	}
	data := Data{
		Headers:         []string{"outcome", "count"},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, []string{Title(row.name), strconv.Itoa(row.value)})
	}
	return data
}

// FailuresTable lists failed report entries.
func FailuresTable(r *report.Report) Data {
	data := Data{Headers: []string{"action", "path", "error_kind", "error"}}
	for _, e := range r.Entries {
		if e.Outcome == report.OutcomeFailed {
			data.Rows = append(data.Rows, []string{e.Action, e.Path, e.ErrorKind, e.Error})
		}
	}
	return data
}
