package source

import (
	"bytes"
)

// LineScanner iterates over the lines of a buffer without copying it.
// Trailing "\n" and "\r\n" are stripped from each line.
//
//	scanner := NewLineScanner(content)
//	for scanner.Scan() {
//	    line := scanner.Bytes()
//	}
type LineScanner struct {
	data    []byte
	start   int // Start of current line
	end     int // End of current line (exclusive, before newline)
	pos     int // Current position in data
	lineNum int // Current line number (1-based)
}

// NewLineScanner creates a scanner over data
func NewLineScanner(data []byte) *LineScanner {
	return &LineScanner{data: data}
}

// Scan advances to the next line. Returns false when done.
func (ls *LineScanner) Scan() bool {
	if ls.pos >= len(ls.data) {
		return false
	}

	ls.start = ls.pos
	ls.lineNum++

	idx := bytes.IndexByte(ls.data[ls.pos:], '\n')
	if idx < 0 {
		// Last line without trailing newline
		ls.end = len(ls.data)
		ls.pos = len(ls.data)
	} else {
		ls.end = ls.pos + idx
		ls.pos = ls.pos + idx + 1
	}

	if ls.end > ls.start && ls.data[ls.end-1] == '\r' {
		ls.end--
	}

	return true
}

// Bytes returns the current line. The slice aliases the scanned buffer.
func (ls *LineScanner) Bytes() []byte {
	return ls.data[ls.start:ls.end]
}

// Text returns the current line as a string
func (ls *LineScanner) Text() string {
	return string(ls.Bytes())
}

// LineNumber returns the current line number (1-based)
func (ls *LineScanner) LineNumber() int {
	return ls.lineNum
}

// CountLines returns the number of lines SplitLines would produce
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

// SplitLines splits data into lines. A trailing newline does not produce an
// empty last line.
func SplitLines(data []byte) []string {
	lines := make([]string, 0, CountLines(data))
	scanner := NewLineScanner(data)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

// isBinary reports whether data looks binary: a NUL byte within the
// first sniffLen bytes
func isBinary(data []byte) bool {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
