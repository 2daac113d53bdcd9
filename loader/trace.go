// Package loader provides trace file loading for the timing model.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/pipesim/insts"
)

// maxLineLength bounds a single trace line. Real traces stay well under 80
// characters.
const maxLineLength = 64 * 1024

// Record is one decoded trace line.
type Record struct {
	// Line is the 1-based line number in the trace.
	Line int
	// Text is the raw line without the trailing newline.
	Text string
	// Inst is the decoded instruction.
	Inst insts.Instruction
}

// Trace reads instruction records from a trace stream.
type Trace struct {
	scanner *bufio.Scanner
	decoder *insts.Decoder
	closer  io.Closer
	line    int
}

// NewTrace creates a Trace reading from r.
func NewTrace(r io.Reader) *Trace {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)

	return &Trace{
		scanner: scanner,
		decoder: insts.NewDecoder(),
	}
}

// Open opens the trace file at path.
func Open(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	t := NewTrace(f)
	t.closer = f

	return t, nil
}

// Close releases the underlying file, if any.
func (t *Trace) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}

// Next returns the next record. Blank lines are skipped. At the end of the
// trace it returns io.EOF. A line that fails to decode yields an error that
// unwraps to *insts.MalformedInputError with the line number filled in.
func (t *Trace) Next() (Record, error) {
	for t.scanner.Scan() {
		t.line++

		text := strings.TrimRight(t.scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		inst, err := t.decoder.Decode(text)
		if err != nil {
			var malformed *insts.MalformedInputError
			if errors.As(err, &malformed) {
				malformed.Line = t.line
			}
			return Record{}, err
		}

		return Record{Line: t.line, Text: text, Inst: inst}, nil
	}

	if err := t.scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("failed to read trace at line %d: %w", t.line+1, err)
	}

	return Record{}, io.EOF
}

// LoadAll decodes every record of the trace file at path.
func LoadAll(path string) ([]Record, error) {
	t, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = t.Close() }()

	var records []Record
	for {
		rec, err := t.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}
