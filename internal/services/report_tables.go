package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"khosta-backend-go/internal/export"
	"khosta-backend-go/internal/models"
	"khosta-backend-go/internal/store"
)

const (
	ReportSummary    = "summary"
	ReportEndingSoon = "ending-soon"
	ReportMovements  = "movements"
	ReportVisitors   = "visitors"
	ReportVisits     = "visits"

	displayDate     = "02/01/2006"
	displayDateTime = "02/01/2006 15:04"
)

var ReportKinds = []string{ReportSummary, ReportEndingSoon, ReportMovements, ReportVisitors, ReportVisits}

type ReportParams struct {
	Range  DateRange
	Active *bool
}

// Movement is one status history entry flattened with its record.
type Movement struct {
	RecordID      string        `json:"recordId"`
	FullName      string        `json:"fullName"`
	ProcessNumber string        `json:"processNumber"`
	Date          time.Time     `json:"date"`
	Status        models.Status `json:"status"`
	Details       string        `json:"details"`
}

// Movements lists every history entry in range, newest first.
func Movements(records []models.Record, r DateRange) []Movement {
	out := []Movement{}
	for _, record := range records {
		for _, entry := range record.History {
			if !r.Contains(entry.Date) {
				continue
			}
			out = append(out, Movement{
				RecordID:      record.ID,
				FullName:      record.FullName,
				ProcessNumber: record.ProcessNumber,
				Date:          entry.Date,
				Status:        entry.Status,
				Details:       entry.Details,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

type ReportService struct {
	Store  store.Store
	Now    func() time.Time
	Logger *zap.Logger
}

func (s *ReportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ReportService) Summary(ctx context.Context) (Summary, error) {
	records, err := s.Store.Records().List(ctx)
	if err != nil {
		return Summary{}, WrapError(err, "list records")
	}
	return Aggregate(records, s.now()), nil
}

func (s *ReportService) EndingSoon(ctx context.Context, params ReportParams) ([]EndingSoonView, error) {
	records, err := s.Store.Records().List(ctx)
	if err != nil {
		return nil, WrapError(err, "list records")
	}
	return endingSoonViews(endingSoonInRange(records, s.now(), params.Range)), nil
}

func (s *ReportService) Movements(ctx context.Context, params ReportParams) ([]Movement, error) {
	records, err := s.Store.Records().List(ctx)
	if err != nil {
		return nil, WrapError(err, "list records")
	}
	return Movements(records, params.Range), nil
}

func (s *ReportService) Visitors(ctx context.Context, params ReportParams) ([]VisitorView, error) {
	snap, err := LoadSnapshot(ctx, s.Store)
	if err != nil {
		return nil, err
	}
	return FilterVisitors(snap, VisitorFilter{Active: params.Active, Created: params.Range}), nil
}

// endingSoonInRange narrows ending-soon items to releases inside r.
func endingSoonInRange(records []models.Record, now time.Time, r DateRange) []EndingSoonItem {
	items := EndingSoon(records, now)
	out := items[:0]
	for _, item := range items {
		if r.Contains(item.ReleaseDate) {
			out = append(out, item)
		}
	}
	return out
}

// Table builds the printable form of a report.
func (s *ReportService) Table(ctx context.Context, kind string, params ReportParams) (export.Table, error) {
	now := s.now()
	snap, err := LoadSnapshot(ctx, s.Store)
	if err != nil {
		return export.Table{}, err
	}
	switch kind {
	case ReportSummary:
		return SummaryTable(Aggregate(snap.Records, now)), nil
	case ReportEndingSoon:
		return EndingSoonTable(endingSoonInRange(snap.Records, now, params.Range), now), nil
	case ReportMovements:
		return MovementsTable(Movements(snap.Records, params.Range), params.Range, now), nil
	case ReportVisitors:
		visitors := FilterVisitors(snap, VisitorFilter{Active: params.Active, Created: params.Range})
		return VisitorsTable(visitors, params.Range, now), nil
	case ReportVisits:
		return VisitsTable(VisitHistory(snap, VisitFilter{Range: params.Range}), params.Range, now), nil
	default:
		return export.Table{}, ErrNotFound(fmt.Sprintf("Unknown report %q", kind))
	}
}

// Export renders a report in format and names the file after the report.
func (s *ReportService) Export(ctx context.Context, kind, format string, params ReportParams) ([]byte, string, error) {
	if format != export.FormatPDF && format != export.FormatXLSX {
		return nil, "", ErrBadRequest(fmt.Sprintf("Unsupported format %q", format))
	}
	table, err := s.Table(ctx, kind, params)
	if err != nil {
		return nil, "", err
	}
	data, err := export.Render(table, format)
	if err != nil {
		return nil, "", WrapError(err, "render report")
	}
	reportsExported.WithLabelValues(kind, format).Inc()
	s.Logger.Info("report exported", zap.String("report", kind), zap.String("format", format), zap.Int("rows", len(table.Rows)))
	return data, export.Filename(kind, format, s.now()), nil
}

func rangeLabel(r DateRange) string {
	switch {
	case r.From.IsZero() && r.To.IsZero():
		return "All dates"
	case r.From.IsZero():
		return "Until " + r.To.Format(displayDate)
	case r.To.IsZero():
		return "From " + r.From.Format(displayDate)
	default:
		return r.From.Format(displayDate) + " to " + r.To.Format(displayDate)
	}
}

func percent(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64) + "%"
}

func SummaryTable(summary Summary) export.Table {
	table := export.Table{
		Title:       "Records summary",
		Subtitle:    fmt.Sprintf("%d of %d records eligible", summary.Eligible, summary.Total),
		GeneratedAt: summary.GeneratedAt,
		Columns: []export.Column{
			{Header: "Breakdown", Width: 16},
			{Header: "Value", Width: 30},
			{Header: "Count", Width: 10},
			{Header: "Percent", Width: 10},
		},
	}
	add := func(group string, buckets []Bucket, label func(string) string) {
		for _, b := range buckets {
			table.Rows = append(table.Rows, []string{group, label(b.Label), strconv.Itoa(b.Count), percent(b.Percent)})
		}
	}
	same := func(s string) string { return s }
	add("Status", summary.ByStatus, func(s string) string { return models.Status(s).Label() })
	add("Crime", summary.ByCrime, same)
	add("Gender", summary.ByGender, same)
	table.Rows = append(table.Rows,
		[]string{"Average", "Sentence (years)", strconv.FormatFloat(summary.AverageSentence, 'f', 1, 64), ""},
		[]string{"Average", "Age (years)", strconv.FormatFloat(summary.AverageAge, 'f', 1, 64), ""},
	)
	return table
}

func EndingSoonTable(items []EndingSoonItem, now time.Time) export.Table {
	table := export.Table{
		Title:       "Sentences ending soon",
		Subtitle:    "Incarcerated records released within 6 months",
		GeneratedAt: now,
		Columns: []export.Column{
			{Header: "Name", Width: 30},
			{Header: "Process", Width: 18},
			{Header: "Crime", Width: 18},
			{Header: "Release date", Width: 14},
			{Header: "Days left", Width: 10},
		},
	}
	for _, item := range items {
		table.Rows = append(table.Rows, []string{
			item.Record.FullName,
			item.Record.ProcessNumber,
			item.Record.CrimeLabel(),
			item.ReleaseDate.Format(displayDate),
			strconv.Itoa(item.DaysRemaining),
		})
	}
	return table
}

func MovementsTable(movements []Movement, r DateRange, now time.Time) export.Table {
	table := export.Table{
		Title:       "Movement history",
		Subtitle:    rangeLabel(r),
		GeneratedAt: now,
		Columns: []export.Column{
			{Header: "Date", Width: 16},
			{Header: "Name", Width: 28},
			{Header: "Process", Width: 16},
			{Header: "Status", Width: 14},
			{Header: "Details", Width: 30},
		},
	}
	for _, m := range movements {
		table.Rows = append(table.Rows, []string{
			m.Date.Format(displayDateTime),
			m.FullName,
			m.ProcessNumber,
			m.Status.Label(),
			m.Details,
		})
	}
	return table
}

func VisitorsTable(visitors []VisitorView, r DateRange, now time.Time) export.Table {
	table := export.Table{
		Title:       "Visitors",
		Subtitle:    rangeLabel(r),
		GeneratedAt: now,
		Columns: []export.Column{
			{Header: "Name", Width: 26},
			{Header: "Document", Width: 16},
			{Header: "Relation", Width: 14},
			{Header: "Visiting", Width: 26},
			{Header: "Status", Width: 10},
			{Header: "Registered", Width: 12},
		},
	}
	for _, v := range visitors {
		status := "Inactive"
		if v.Active {
			status = "Active"
		}
		table.Rows = append(table.Rows, []string{
			v.FullName,
			v.Document,
			v.Relation,
			v.RecordName,
			status,
			v.CreatedAt.Format(displayDate),
		})
	}
	return table
}

func VisitsTable(visits []VisitView, r DateRange, now time.Time) export.Table {
	table := export.Table{
		Title:       "Visits",
		Subtitle:    rangeLabel(r),
		GeneratedAt: now,
		Columns: []export.Column{
			{Header: "Date", Width: 16},
			{Header: "Visitor", Width: 26},
			{Header: "Record", Width: 26},
			{Header: "Type", Width: 12},
			{Header: "Notes", Width: 30},
		},
	}
	for _, v := range visits {
		table.Rows = append(table.Rows, []string{
			v.VisitDate.Format(displayDateTime),
			v.VisitorName,
			v.RecordName,
			string(v.VisitType),
			v.Notes,
		})
	}
	return table
}
