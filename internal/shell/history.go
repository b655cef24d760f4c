// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// ErrHistoryFile is returned when the history file cannot be read or written.
var ErrHistoryFile = errors.New("history file")

// FsFactory returns the filesystem holding the history file and the PATH
// directories searched for completion.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

func (s *Shell) loadHistory(_ context.Context) error {
	if s.historyFile == "" {
		return nil
	}

	data, err := afero.ReadFile(FsFactory(), s.historyFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrHistoryFile, err)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		s.appendHistory(sc.Text())
	}

	return nil
}

func (s *Shell) saveHistory() error {
	if s.historyFile == "" {
		return nil
	}

	var buf bytes.Buffer
	for _, l := range s.history {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}

	if err := afero.WriteFile(FsFactory(), s.historyFile, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrHistoryFile, err)
	}

	return nil
}

// appendHistory adds a non-blank line, dropping the oldest entries past the limit.
func (s *Shell) appendHistory(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	s.history = append(s.history, line)

	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		s.history = s.history[len(s.history)-s.historyLimit:]
	}
}

func (s *Shell) addHistory(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	s.appendHistory(line)

	if hk, ok := s.reader.(historyKeeper); ok {
		hk.AppendHistory(line)
	}
}

// ClearHistory implements builtins.Host.
func (s *Shell) ClearHistory() {
	s.history = nil

	if hk, ok := s.reader.(historyKeeper); ok {
		hk.ClearHistory()
	}
}
