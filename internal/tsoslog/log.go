// Copyright 2025 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tsoslog provides the process-global structured logger used by
// every TSOS component, defaulting to a stderr text handler and swapping to
// the systemd journal when one is detected, the same "detect once, swap
// backend once" shape the original implementation's journal_logger crate
// used.
package tsoslog

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"golang.org/x/sys/unix"
)

// LevelTrace sits below slog's built-in Debug level; TSOS_LOG=trace maps to
// it. slog's level type is just a signed integer, so this is a legal,
// idiomatic extension.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a TSOS_LOG value to a slog.Level. Matching is
// case-insensitive; anything unrecognized, including the empty string,
// defaults to warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelWarn
	}
}

// Init installs the process-global default logger at the given level.
// When forceJournal is true, or when JournalAvailable reports that stdout
// or stderr is connected to the systemd journal stream, logging goes to the
// journal instead of stderr. Init must be called exactly once, before any
// other component logs; re-initializing is a programming error.
func Init(level slog.Level, forceJournal bool) {
	if forceJournal || JournalAvailable() {
		slog.SetDefault(slog.New(newJournalHandler(level)))
		slog.Debug("journal logging detected, switched to journal logger")
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	slog.Debug("no journal logging detected, using stderr logger")
}

// ForceJournal interprets the TSOS_FORCE_JOURNAL environment variable: it is
// considered set when present and its first character is one of 1 y Y t T.
func ForceJournal() bool {
	v, ok := os.LookupEnv("TSOS_FORCE_JOURNAL")
	if !ok || v == "" {
		return false
	}
	switch v[0] {
	case '1', 'y', 'Y', 't', 'T':
		return true
	default:
		return false
	}
}

// JournalAvailable reports whether stdout or stderr is connected to the
// systemd journal stream named by JOURNAL_STREAM ("<dev>:<ino>" in
// decimal), mirroring journal_logger::has_journal from the original
// implementation. Matching only the inode, without the device, would be
// insufficient: inode numbers are only unique within a single filesystem.
func JournalAvailable() bool {
	stream, ok := os.LookupEnv("JOURNAL_STREAM")
	if !ok {
		return false
	}
	parts := strings.SplitN(stream, ":", 2)
	if len(parts) != 2 {
		return false
	}
	dev, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return false
	}
	ino, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return false
	}
	return fdMatches(unix.Stdout, dev, ino) || fdMatches(unix.Stderr, dev, ino)
}

func fdMatches(fd int, dev, ino uint64) bool {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return false
	}
	return uint64(st.Dev) == dev && uint64(st.Ino) == ino
}

// journalHandler adapts slog.Handler onto github.com/coreos/go-systemd/v22/journal,
// which itself already re-derives journal availability from JOURNAL_STREAM
// on every call; Init only uses JournalAvailable to decide whether to
// install this handler in the first place.
type journalHandler struct {
	level slog.Level
	attrs []slog.Attr
}

func newJournalHandler(level slog.Level) *journalHandler {
	return &journalHandler{level: level}
}

func (h *journalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *journalHandler) Handle(_ context.Context, r slog.Record) error {
	vars := make(map[string]string, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		vars[strings.ToUpper(a.Key)] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		vars[strings.ToUpper(a.Key)] = a.Value.String()
		return true
	})
	return journal.Send(r.Message, journalPriority(r.Level), vars)
}

func (h *journalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &journalHandler{level: h.level, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *journalHandler) WithGroup(_ string) slog.Handler {
	// Journal fields are a flat namespace; grouping has no representation.
	return h
}

func journalPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}
