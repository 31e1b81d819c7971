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

package mntns

import (
	"fmt"

	"github.com/thediveo/ioctl"
	"golang.org/x/sys/unix"
)

// nsioClass and nsGetNSType implement the NS_GET_NSTYPE ioctl(2) command
// for namespace relationship queries, adapted from
// github.com/thediveo/spacetest's space.go, restricted here to the single
// namespace type (CLONE_NEWNS) TSOS ever deals with.
const nsioClass = 0xb7

var nsGetNSType = ioctl.IO(nsioClass, 0x3)

// Ino returns the inode number identifying the mount namespace referenced
// by the given /proc path (typically "/proc/self/ns/mnt"), after verifying
// via NS_GET_NSTYPE that the reference really is a mount namespace and not
// some other namespace type accidentally passed in.
func Ino(path string) (uint64, error) {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = unix.Close(fd) }()

	typ, err := unix.IoctlRetInt(fd, nsGetNSType)
	if err != nil {
		return 0, fmt.Errorf("determining namespace type of %s: %w", path, err)
	}
	if typ != unix.CLONE_NEWNS {
		return 0, fmt.Errorf("%s is not a mount namespace reference", path)
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return st.Ino, nil
}

// CurrentIno returns the inode number of the mount namespace the calling
// OS thread is currently attached to.
func CurrentIno() (uint64, error) {
	return Ino("/proc/thread-self/ns/mnt")
}
