package loader

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadCoNLL parses CoNLL-style sequence data: one token per line, sentences
// separated by blank lines. Each line holds the token followed by one value
// per entry of names; a dataset file uses []string{"true_tags"} and a
// system-output file with gold tags included uses
// []string{"true_tags", "predicted_tags"}. Every sentence becomes one
// sample with a "tokens" field plus one field per name.
func ReadCoNLL(r io.Reader, names []string) ([]Sample, error) {
	var samples []Sample
	tokens := []string{}
	cols := make([][]string, len(names))
	for i := range cols {
		cols[i] = []string{}
	}

	flush := func() {
		if len(tokens) == 0 {
			return
		}
		s := Sample{"tokens": tokens}
		for i, name := range names {
			s[name] = cols[i]
		}
		samples = append(samples, s)
		tokens = []string{}
		cols = make([][]string, len(names))
		for i := range cols {
			cols[i] = []string{}
		}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	row := 0
	for sc.Scan() {
		row++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != len(names)+1 {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", row, len(names)+1, len(parts))
		}
		tokens = append(tokens, parts[0])
		for i := range names {
			cols[i] = append(cols[i], parts[i+1])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	flush()
	return samples, nil
}
