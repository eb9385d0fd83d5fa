package ingest

// streaming.go provides the reader plumbing for flight schedule files.
//
// Input files come from spreadsheets and text editors, so before lines are
// split the stream is cleaned up:
//
//   - A leading UTF-8 BOM (0xEF 0xBB 0xBF) written by Windows tools is dropped
//   - Lines end at \n, \r\n or a lone \r (old Mac exports)
//   - Invalid UTF-8 sequences are replaced with U+FFFD, line by line
//   - Bytes are counted for metrics
//
// Use newLineReader to apply all of them in the correct order.

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode/utf8"
)

// MaxLineBytes is the default bound on a single line; longer lines fail the file.
const MaxLineBytes = 1 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// countingReader wraps an io.Reader to track bytes read.
type countingReader struct {
	reader    io.Reader
	bytesRead int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.bytesRead += int64(n)
	return n, err
}

// lineReader yields sanitized lines from a cleaned stream.
type lineReader struct {
	counter *countingReader
	scanner *bufio.Scanner
}

// newLineReader wraps r with byte counting, BOM skipping and line splitting.
// The order matters: counting sees the raw bytes, the BOM is stripped before
// the first line is split.
func newLineReader(r io.Reader, maxLine int) *lineReader {
	if maxLine <= 0 {
		maxLine = MaxLineBytes
	}

	counter := &countingReader{reader: r}
	br := bufio.NewReader(counter)

	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)
	scanner.Split(scanLines)

	return &lineReader{counter: counter, scanner: scanner}
}

// scanLines is bufio.ScanLines extended to treat a lone \r as a line break.
// A \r\n pair is one break, so a \r at the end of the buffer waits for more
// input before deciding.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		switch {
		case i+1 < len(data) && data[i+1] == '\n':
			return i + 2, data[:i], nil
		case i+1 < len(data) || atEOF:
			return i + 1, data[:i], nil
		default:
			return 0, nil, nil
		}
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Next returns the next line without its terminator.
func (l *lineReader) Next() (string, bool) {
	if !l.scanner.Scan() {
		return "", false
	}
	line := l.scanner.Text()
	if !utf8.ValidString(line) {
		line = strings.ToValidUTF8(line, "\uFFFD")
	}
	return line, true
}

// Err returns the first non-EOF error encountered.
func (l *lineReader) Err() error {
	return l.scanner.Err()
}

// BytesRead returns the number of raw bytes consumed so far.
func (l *lineReader) BytesRead() int64 {
	return l.counter.bytesRead
}
