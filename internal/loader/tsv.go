package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Field describes one TSV column: its sample key and how to parse the cell.
type Field struct {
	Name  string
	Parse func(string) (any, error)
}

// StringField keeps the cell as-is.
func StringField(name string) Field {
	return Field{Name: name, Parse: func(s string) (any, error) { return s, nil }}
}

// FloatField parses the cell as a float64.
func FloatField(name string) Field {
	return Field{Name: name, Parse: func(s string) (any, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		return v, nil
	}}
}

// IntField parses the cell as an int.
func IntField(name string) Field {
	return Field{Name: name, Parse: func(s string) (any, error) {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return v, nil
	}}
}

// OptionalFloatField parses the cell as a float64, mapping an empty cell to
// a missing value instead of an error.
func OptionalFloatField(name string) Field {
	return Field{Name: name, Parse: func(s string) (any, error) {
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		return v, nil
	}}
}

// ReadTSV parses tab-separated rows against the field schema. Blank lines
// are skipped; any malformed row fails the load with its row number.
func ReadTSV(r io.Reader, fields []Field) ([]Sample, error) {
	var samples []Sample
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	row := 0
	for sc.Scan() {
		row++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != len(fields) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", row, len(fields), len(cols))
		}
		s := make(Sample, len(fields))
		for i, f := range fields {
			v, err := f.Parse(cols[i])
			if err != nil {
				return nil, fmt.Errorf("row %d: column %s: %w", row, f.Name, err)
			}
			if v != nil {
				s[f.Name] = v
			}
		}
		samples = append(samples, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return samples, nil
}
