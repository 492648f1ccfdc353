package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const sampleDateLayout = "2006-01-02"

// Sample is one historical observation count.
type Sample struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// SyntheticHistory fabricates six monthly samples ending at the first day of
// the current month, declining from 120 to 60 in chronological order. It only
// exists so the forecast stage has something to chew on in demos.
func SyntheticHistory(now time.Time) []Sample {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]Sample, 0, 6)
	for i := 5; i >= 0; i-- {
		d := first.AddDate(0, -i, 0)
		out = append(out, Sample{Date: d.Format(sampleDateLayout), Count: 120 - (5-i)*12})
	}
	return out
}

// ParseHistoryCSV reads caller-supplied history. The file must carry at least
// date and count columns; extra columns are ignored.
func ParseHistoryCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("history csv: read header: %w", err)
	}
	dateIdx, countIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "date":
			dateIdx = i
		case "count":
			countIdx = i
		}
	}
	if dateIdx == -1 || countIdx == -1 {
		return nil, fmt.Errorf("history csv: need date and count columns, got %v", header)
	}

	var out []Sample
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("history csv: %w", err)
		}
		if len(rec) <= dateIdx || len(rec) <= countIdx {
			return nil, fmt.Errorf("history csv: short row %v", rec)
		}
		date := strings.TrimSpace(rec[dateIdx])
		if _, err := time.Parse(sampleDateLayout, date); err != nil {
			return nil, fmt.Errorf("history csv: bad date %q", date)
		}
		count, err := strconv.Atoi(strings.TrimSpace(rec[countIdx]))
		if err != nil {
			return nil, fmt.Errorf("history csv: bad count %q", rec[countIdx])
		}
		out = append(out, Sample{Date: date, Count: count})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("history csv: no data rows")
	}
	return out, nil
}

// HistoryCSV serializes samples back to the date,count rows the forecast
// prompt expects.
func HistoryCSV(samples []Sample) string {
	var b strings.Builder
	b.WriteString("date,count")
	for _, s := range samples {
		b.WriteByte('\n')
		b.WriteString(s.Date)
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(s.Count))
	}
	return b.String()
}
