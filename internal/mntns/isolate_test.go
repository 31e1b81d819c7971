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

package mntns_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"

	"github.com/flashsystems/tsos/internal/mntns"
)

var _ = Describe("Isolate", func() {

	BeforeEach(func() {
		if os.Getuid() != 0 {
			Skip("needs root")
		}
	})

	It("changes the mount namespace inode compared to the original one", func() {
		// Isolate locks the calling goroutine to its OS thread and never
		// unlocks it, by design (see isolate.go); this spec therefore runs
		// in the same dedicated goroutine for the remainder of the process,
		// which is fine since it is the last thing this spec does.
		before := Successful(mntns.CurrentIno())

		Expect(mntns.Isolate()).To(Succeed())

		after := Successful(mntns.CurrentIno())
		Expect(after).NotTo(Equal(before))
	})
})
