package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/newthinker/aurum/internal/collector"
	"github.com/newthinker/aurum/internal/core"
)

// CSVFile reads a local "date,close" file. The symbol argument is ignored;
// the file holds a single series.
type CSVFile struct {
	config collector.Config
	path   string
}

// New creates a CSV collector reading path
func New(path string) *CSVFile {
	return &CSVFile{path: path}
}

func (c *CSVFile) Name() string {
	return "csv"
}

func (c *CSVFile) Init(cfg collector.Config) error {
	c.config = cfg
	if cfg.Path != "" {
		c.path = cfg.Path
	}
	return nil
}

// FetchHistory reads the configured file
func (c *CSVFile) FetchHistory(ctx context.Context, symbol string) ([]core.PriceBar, error) {
	if c.path == "" {
		return nil, core.WrapError(core.ErrConfigMissing, errors.New("csv path is not configured"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", c.path, err)
	}
	defer f.Close()

	return ReadBars(f)
}

// ReadBars parses "date,close" records. A header row is skipped when its
// close column is not a number. Extra columns are ignored; the result is
// sorted oldest first.
func ReadBars(r io.Reader) ([]core.PriceBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var bars []core.PriceBar
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidData, fmt.Errorf("line %d: %w", line, err))
		}
		if len(record) < 2 {
			return nil, core.WrapError(core.ErrInvalidData, fmt.Errorf("line %d: expected date,close", line))
		}

		closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, core.WrapError(core.ErrInvalidData, fmt.Errorf("line %d: close %q", line, record[1]))
		}
		date, err := core.ParseDate(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidData, fmt.Errorf("line %d: %w", line, err))
		}

		bars = append(bars, core.PriceBar{Date: date, Close: closePrice})
	}

	if len(bars) == 0 {
		return nil, core.WrapError(core.ErrNoData, errors.New("csv contains no price rows"))
	}
	return collector.SortBars(bars), nil
}
