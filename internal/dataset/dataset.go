package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Observations holds the (x, y) sample pairs the curve is fitted against.
// The points are treated as an unordered sample; no ordering is assumed.
type Observations struct {
	X []float64
	Y []float64
}

// Len returns the number of observation pairs.
func (o Observations) Len() int {
	return len(o.X)
}

// Load reads observations from a CSV file with header columns named "x" and
// "y". Extra columns are ignored. A missing file, missing column, or
// unparsable value is a fatal input error.
func Load(path string) (Observations, error) {
	file, err := os.Open(path)
	if err != nil {
		return Observations{}, fmt.Errorf("open observations: %w", err)
	}
	defer file.Close()

	obs, err := Read(file)
	if err != nil {
		return Observations{}, fmt.Errorf("%s: %w", path, err)
	}
	return obs, nil
}

// Read parses observations from CSV content.
func Read(in io.Reader) (Observations, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return Observations{}, fmt.Errorf("empty observation source")
	}
	if err != nil {
		return Observations{}, fmt.Errorf("read header: %w", err)
	}

	xIdx, err := columnIndexByName(header, "x")
	if err != nil {
		return Observations{}, err
	}
	yIdx, err := columnIndexByName(header, "y")
	if err != nil {
		return Observations{}, err
	}

	var obs Observations
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Observations{}, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++
		if blankRecord(record) {
			continue
		}
		if xIdx >= len(record) || yIdx >= len(record) {
			return Observations{}, fmt.Errorf("row %d missing x/y columns", row)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(record[xIdx]), 64)
		if err != nil {
			return Observations{}, fmt.Errorf("parse x row %d: %w", row, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(record[yIdx]), 64)
		if err != nil {
			return Observations{}, fmt.Errorf("parse y row %d: %w", row, err)
		}
		if math.IsNaN(x) || math.IsNaN(y) {
			return Observations{}, fmt.Errorf("row %d holds NaN coordinates", row)
		}
		obs.X = append(obs.X, x)
		obs.Y = append(obs.Y, y)
	}

	if obs.Len() == 0 {
		return Observations{}, fmt.Errorf("observation source holds no data rows")
	}
	return obs, nil
}

// Write emits observations as a two-column CSV with an x,y header.
func Write(path string, obs Observations) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"x", "y"}); err != nil {
		return err
	}
	for i := range obs.X {
		if err := writer.Write([]string{
			strconv.FormatFloat(obs.X[i], 'f', -1, 64),
			strconv.FormatFloat(obs.Y[i], 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func columnIndexByName(header []string, name string) (int, error) {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("missing required column %q in header %v", name, header)
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
