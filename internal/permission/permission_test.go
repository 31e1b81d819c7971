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

package permission_test

import (
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flashsystems/tsos/internal/permission"
)

var _ = Describe("Mirror", func() {

	BeforeEach(func() {
		if os.Getuid() != 0 {
			Skip("needs root to chown")
		}
	})

	DescribeTable("copies mode bits and ownership from src to dst",
		func(srcUID, srcGID uint32, srcMode uint32, dstUID, dstGID uint32, dstMode uint32) {
			dir := GinkgoT().TempDir()
			src := filepath.Join(dir, "source")
			dst := filepath.Join(dir, "destination")

			Expect(os.WriteFile(src, nil, 0o600)).To(Succeed())
			Expect(os.WriteFile(dst, nil, 0o600)).To(Succeed())
			Expect(unix.Chmod(src, srcMode)).To(Succeed())
			Expect(unix.Chmod(dst, dstMode)).To(Succeed())
			Expect(os.Chown(src, int(srcUID), int(srcGID))).To(Succeed())
			Expect(os.Chown(dst, int(dstUID), int(dstGID))).To(Succeed())

			Expect(permission.Mirror(src, dst)).To(Succeed())

			info, err := os.Stat(dst)
			Expect(err).NotTo(HaveOccurred())
			st := info.Sys().(*syscall.Stat_t)

			Expect(st.Uid).To(Equal(srcUID), "owner uid not copied")
			Expect(st.Gid).To(Equal(srcGID), "owner gid not copied")
			Expect(uint32(st.Mode) & 0o7777).To(Equal(srcMode & 0o7777), "mode bits not copied")
		},
		Entry("root owning a restrictive file", uint32(0), uint32(0), uint32(0o700), uint32(1), uint32(1), uint32(0o555)),
		Entry("non-root owning a setuid file", uint32(1000), uint32(1100), uint32(0o4741), uint32(0), uint32(0), uint32(0o777)),
	)

	It("fails when src doesn't exist", func() {
		dir := GinkgoT().TempDir()
		dst := filepath.Join(dir, "destination")
		Expect(os.WriteFile(dst, nil, 0o600)).To(Succeed())

		err := permission.Mirror(filepath.Join(dir, "missing"), dst)
		Expect(err).To(HaveOccurred())
	})
})
