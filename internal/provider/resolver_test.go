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

package provider_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flashsystems/tsos/internal/provider"
)

var _ = Describe("SafeName", func() {

	DescribeTable("reduces to the final path component",
		func(name, expected string) {
			got, err := provider.SafeName(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(expected))
		},
		Entry("bare name", "myprovider", "myprovider"),
		Entry("nested path", "a/b/myprovider", "myprovider"),
		Entry("absolute path", "/etc/tsos.d/myprovider", "myprovider"),
	)

	DescribeTable("rejects unsafe names",
		func(name string) {
			_, err := provider.SafeName(name)
			Expect(err).To(HaveOccurred())
		},
		Entry("empty", ""),
		Entry("dot", "."),
		Entry("dotdot", ".."),
		Entry("trailing slash reduces to dir name, not this case", "/"),
	)
})

var _ = Describe("Resolve", func() {

	var dirA, dirB string

	BeforeEach(func() {
		root := GinkgoT().TempDir()
		dirA = filepath.Join(root, "a")
		dirB = filepath.Join(root, "b")
		Expect(os.MkdirAll(dirA, 0o755)).To(Succeed())
		Expect(os.MkdirAll(dirB, 0o755)).To(Succeed())
	})

	It("returns the first match across the search path, local before global", func() {
		Expect(os.WriteFile(filepath.Join(dirA, "provider"), []byte("a"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dirB, "provider"), []byte("b"), 0o755)).To(Succeed())

		path, found := provider.Resolve([]string{dirA, dirB}, "provider")
		Expect(found).To(BeTrue())
		Expect(path).To(Equal(filepath.Join(dirA, "provider")))

		path, found = provider.Resolve([]string{dirB, dirA}, "provider")
		Expect(found).To(BeTrue())
		Expect(path).To(Equal(filepath.Join(dirB, "provider")))
	})

	It("skips directories that don't exist or aren't directories", func() {
		notADir := filepath.Join(dirA, "notadir")
		Expect(os.WriteFile(notADir, []byte("x"), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dirB, "provider"), []byte("b"), 0o755)).To(Succeed())

		path, found := provider.Resolve([]string{filepath.Join(dirA, "missing"), notADir, dirB}, "provider")
		Expect(found).To(BeTrue())
		Expect(path).To(Equal(filepath.Join(dirB, "provider")))
	})

	It("reports absent when no directory has a match", func() {
		_, found := provider.Resolve([]string{dirA, dirB}, "provider")
		Expect(found).To(BeFalse())
	})

	It("skips non-regular-file entries", func() {
		Expect(os.MkdirAll(filepath.Join(dirA, "provider"), 0o755)).To(Succeed())
		_, found := provider.Resolve([]string{dirA}, "provider")
		Expect(found).To(BeFalse())
	})
})
