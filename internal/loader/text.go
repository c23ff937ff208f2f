package loader

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadText reads one sample per line, stored under the given field name.
// Trailing blank lines are ignored.
func ReadText(r io.Reader, name string) ([]Sample, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	samples := make([]Sample, len(lines))
	for i, l := range lines {
		samples[i] = Sample{name: l}
	}
	return samples, nil
}
