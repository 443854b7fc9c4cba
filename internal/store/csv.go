package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "ta-kernels/internal/errors"
	"ta-kernels/internal/logging"
	"ta-kernels/internal/models"
)

// csvFloat is a numeric cell. Empty, "null" and "NaN" cells read as NaN.
type csvFloat float64

func (f *csvFloat) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "nan") {
		*f = csvFloat(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*f = csvFloat(v)
	return nil
}

// csvBar is one row of a Yahoo-style bar export.
type csvBar struct {
	Date     string   `csv:"Date"`
	Open     csvFloat `csv:"Open"`
	High     csvFloat `csv:"High"`
	Low      csvFloat `csv:"Low"`
	Close    csvFloat `csv:"Close"`
	AdjClose csvFloat `csv:"Adj Close"`
	Volume   csvFloat `csv:"Volume"`
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	// Unix seconds
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readHeader returns the trimmed header names of the CSV in data.
func readHeader(data []byte) (map[string]bool, error) {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	return present, nil
}

// LoadCSV reads bars from r. The Date column is required; price and volume columns become frame
// columns when their header is present. Rows are sorted by date and a repeated date is an error.
func LoadCSV(r io.Reader) (*models.BarFrame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewDataError("csv", "reading input", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	present, err := readHeader(data)
	if err != nil {
		return nil, apperrors.NewDataError("csv", "reading header", err)
	}
	if !present["Date"] {
		return nil, apperrors.NewDataError("csv", "missing Date column", apperrors.ErrUnsupportedFormat)
	}

	var rows []*csvBar
	if err := gocsv.Unmarshal(bytes.NewReader(data), &rows); err != nil {
		return nil, apperrors.NewDataError("csv", "decoding rows", err)
	}

	index := make([]time.Time, len(rows))
	for i, row := range rows {
		ts, err := parseDate(row.Date)
		if err != nil {
			return nil, apperrors.NewDataError("csv", fmt.Sprintf("row %d", i+2), err)
		}
		index[i] = ts
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return index[order[a]].Before(index[order[b]]) })

	sorted := make([]time.Time, len(rows))
	for i, j := range order {
		sorted[i] = index[j]
		if i > 0 && sorted[i].Equal(sorted[i-1]) {
			return nil, apperrors.NewDataError("csv", fmt.Sprintf("duplicate date %s", sorted[i].Format(time.RFC3339)), apperrors.ErrInputValidation)
		}
	}

	frame := models.NewBarFrame(sorted)
	fields := []struct {
		name string
		get  func(*csvBar) csvFloat
	}{
		{models.ColOpen, func(b *csvBar) csvFloat { return b.Open }},
		{models.ColHigh, func(b *csvBar) csvFloat { return b.High }},
		{models.ColLow, func(b *csvBar) csvFloat { return b.Low }},
		{models.ColClose, func(b *csvBar) csvFloat { return b.Close }},
		{models.ColAdjClose, func(b *csvBar) csvFloat { return b.AdjClose }},
		{models.ColVolume, func(b *csvBar) csvFloat { return b.Volume }},
	}
	for _, field := range fields {
		if !present[field.name] {
			continue
		}
		values := make([]float64, len(rows))
		for i, j := range order {
			values[i] = float64(field.get(rows[j]))
		}
		if err := frame.SetColumn(field.name, values); err != nil {
			return nil, apperrors.NewDataError("csv", field.name, err)
		}
	}
	return frame, nil
}

// CSVSource is a BarSource over one CSV file. Symbol and timeframe are ignored.
type CSVSource struct {
	options
	Path string
}

var _ BarSource = (*CSVSource)(nil)

// NewCSVSource creates a source reading path.
func NewCSVSource(path string, opts ...Option) *CSVSource {
	return &CSVSource{options: newOptions(opts), Path: path}
}

// LoadFrame implements BarSource.
func (s *CSVSource) LoadFrame(ctx context.Context, _, _ string, from, to time.Time) (*models.BarFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	file, err := os.Open(s.Path)
	if err != nil {
		return nil, apperrors.NewDataError("csv", "opening "+s.Path, err)
	}
	defer file.Close()

	frame, err := LoadCSV(file)
	if err != nil {
		return nil, err
	}
	frame = sliceFrame(frame, from, to)

	s.metrics.AddBars("csv", frame.Len())
	logging.LogBarsLoaded(s.logger, "csv:"+s.Path, frame.Len(), time.Since(start))
	return frame, nil
}

// sliceFrame keeps the bars inside [from, to]. Zero bounds are open.
func sliceFrame(f *models.BarFrame, from, to time.Time) *models.BarFrame {
	if from.IsZero() && to.IsZero() {
		return f
	}
	index := f.Index()
	lo := sort.Search(len(index), func(i int) bool { return from.IsZero() || !index[i].Before(from) })
	hi := len(index)
	if !to.IsZero() {
		hi = sort.Search(len(index), func(i int) bool { return index[i].After(to) })
	}
	if hi < lo {
		hi = lo
	}

	out := models.NewBarFrame(index[lo:hi])
	for _, name := range f.ColumnNames() {
		col, _ := f.Column(name)
		_ = out.SetColumn(name, col[lo:hi])
	}
	return out
}
