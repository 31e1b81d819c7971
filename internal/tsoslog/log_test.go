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

package tsoslog_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flashsystems/tsos/internal/tsoslog"
)

var _ = Describe("ParseLevel", func() {

	DescribeTable("recognized levels",
		func(value string, expected slog.Level) {
			Expect(tsoslog.ParseLevel(value)).To(Equal(expected))
		},
		Entry("error", "error", slog.LevelError),
		Entry("warn", "warn", slog.LevelWarn),
		Entry("warning", "warning", slog.LevelWarn),
		Entry("info", "info", slog.LevelInfo),
		Entry("debug", "debug", slog.LevelDebug),
		Entry("trace", "trace", tsoslog.LevelTrace),
		Entry("mixed case", "DeBuG", slog.LevelDebug),
		Entry("padded", "  info  ", slog.LevelInfo),
	)

	It("defaults unrecognized or empty values to warn", func() {
		Expect(tsoslog.ParseLevel("")).To(Equal(slog.LevelWarn))
		Expect(tsoslog.ParseLevel("bogus")).To(Equal(slog.LevelWarn))
	})
})

var _ = Describe("ForceJournal", func() {

	AfterEach(func() {
		os.Unsetenv("TSOS_FORCE_JOURNAL")
	})

	It("is false when unset", func() {
		os.Unsetenv("TSOS_FORCE_JOURNAL")
		Expect(tsoslog.ForceJournal()).To(BeFalse())
	})

	DescribeTable("truthy first characters",
		func(value string) {
			os.Setenv("TSOS_FORCE_JOURNAL", value)
			Expect(tsoslog.ForceJournal()).To(BeTrue())
		},
		Entry("1", "1"),
		Entry("y", "yes"),
		Entry("Y", "Yep"),
		Entry("t", "true"),
		Entry("T", "True"),
	)

	It("is false for anything else", func() {
		os.Setenv("TSOS_FORCE_JOURNAL", "0")
		Expect(tsoslog.ForceJournal()).To(BeFalse())
	})
})

var _ = Describe("JournalAvailable", func() {

	AfterEach(func() {
		os.Unsetenv("JOURNAL_STREAM")
	})

	It("is false when JOURNAL_STREAM is unset", func() {
		os.Unsetenv("JOURNAL_STREAM")
		Expect(tsoslog.JournalAvailable()).To(BeFalse())
	})

	It("is false for a malformed JOURNAL_STREAM", func() {
		os.Setenv("JOURNAL_STREAM", "not-a-pair")
		Expect(tsoslog.JournalAvailable()).To(BeFalse())
	})

	It("is false when the dev:ino pair doesn't match stdout or stderr", func() {
		os.Setenv("JOURNAL_STREAM", "99999999:99999999")
		Expect(tsoslog.JournalAvailable()).To(BeFalse())
	})
})
