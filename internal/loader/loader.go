// Package loader reads dataset and system-output files into samples.
package loader

import (
	"fmt"
	"io"
	"os"
)

// FileType identifies a supported input encoding.
type FileType string

const (
	FileTypeTSV   FileType = "tsv"
	FileTypeJSON  FileType = "json"
	FileTypeCoNLL FileType = "conll"
	FileTypeText  FileType = "text"
)

// ParseFileType validates a user-supplied file type string.
func ParseFileType(s string) (FileType, error) {
	switch FileType(s) {
	case FileTypeTSV, FileTypeJSON, FileTypeCoNLL, FileTypeText:
		return FileType(s), nil
	}
	return "", fmt.Errorf("unknown file type %q", s)
}

// Sample is one record of a dataset or system output, keyed by field name.
type Sample map[string]any

// Merge joins dataset samples with system-output samples by position. When
// both sides carry an "id" field the values must agree row by row.
func Merge(dataset, output []Sample) ([]Sample, error) {
	if len(dataset) != len(output) {
		return nil, fmt.Errorf("dataset has %d rows but system output has %d", len(dataset), len(output))
	}
	merged := make([]Sample, len(dataset))
	for i := range dataset {
		if did, ok := dataset[i]["id"]; ok {
			if oid, ok := output[i]["id"]; ok && fmt.Sprint(did) != fmt.Sprint(oid) {
				return nil, fmt.Errorf("row %d: dataset id %v does not match system output id %v", i+1, did, oid)
			}
		}
		s := make(Sample, len(dataset[i])+len(output[i]))
		for k, v := range dataset[i] {
			s[k] = v
		}
		for k, v := range output[i] {
			s[k] = v
		}
		merged[i] = s
	}
	return merged, nil
}

// ReadFile reads a whole file with the given per-reader load function.
func ReadFile(path string, read func(io.Reader) ([]Sample, error)) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	samples, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}
