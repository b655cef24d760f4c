// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// ErrInterrupted is returned by a LineReader when the user aborted the line.
var ErrInterrupted = errors.New("line aborted")

const (
	shebang = "#!"
	// maxLineSize is the longest line a ScanReader accepts.
	maxLineSize = 16 * 1024 * 1024
)

// LineReader is a source of input lines. ReadLine returns io.EOF at end of input.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// historyKeeper is implemented by readers with their own history.
type historyKeeper interface {
	AppendHistory(line string)
	ClearHistory()
}

// TerminalReader reads lines from the terminal with line editing and history.
type TerminalReader struct {
	state *liner.State
}

// NewTerminalReader puts the terminal into line editing mode. complete, when
// not nil, completes the word being typed. Close must be called to restore
// the terminal.
func NewTerminalReader(complete func(line string) []string) *TerminalReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)

	if complete != nil {
		state.SetCompleter(complete)
	}

	return &TerminalReader{state: state}
}

// ReadLine implements LineReader. Ctrl-C returns ErrInterrupted.
func (r *TerminalReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrInterrupted
	}

	return line, err //nolint:wrapcheck
}

// AppendHistory adds line to the editing history.
func (r *TerminalReader) AppendHistory(line string) {
	r.state.AppendHistory(line)
}

// ClearHistory empties the editing history.
func (r *TerminalReader) ClearHistory() {
	r.state.ClearHistory()
}

// Close restores the terminal.
func (r *TerminalReader) Close() error {
	return r.state.Close() //nolint:wrapcheck
}

// ScanReader reads lines from scripts, -c strings and piped input.
// A "#!" first line is skipped.
type ScanReader struct {
	scanner *bufio.Scanner
	started bool
}

// NewScanReader returns a reader over r.
func NewScanReader(r io.Reader) *ScanReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)

	return &ScanReader{scanner: scanner}
}

// ReadLine implements LineReader. The prompt is not printed.
func (r *ScanReader) ReadLine(_ string) (string, error) {
	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")

		first := !r.started
		r.started = true

		if first && strings.HasPrefix(line, shebang) {
			continue
		}

		return line, nil
	}

	if err := r.scanner.Err(); err != nil {
		return "", err //nolint:wrapcheck
	}

	return "", io.EOF
}
