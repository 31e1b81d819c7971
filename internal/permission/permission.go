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

// Package permission mirrors a template file's mode and ownership onto a
// rendered file, the way the original implementation's
// system::permissions::copy_perms_and_owners did.
//
// The original crate carried an optional, compile-time "acl" feature that
// copied full POSIX ACLs instead of just the low mode bits. No ACL binding
// is present anywhere in the reference corpus this module was grown from,
// so that path is not implemented here; Mirror always copies mode bits plus
// owner/group, which is also the original's non-ACL default build.
package permission

import (
	"log/slog"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/flashsystems/tsos/internal/tsoserr"
)

// Mirror copies src's (uid, gid) and low 12 mode bits onto dst. Ownership
// is applied before mode: chown silently clears the setuid/setgid bits of
// a regular file, so a chmod done first would not survive it; applying
// ownership first and mode second is the order that leaves dst's final
// bits equal to src's.
//
// The raw mode bits are applied via unix.Chmod rather than os.Chmod, since
// os.FileMode uses its own bit layout for the setuid/setgid/sticky bits;
// going through unix avoids re-deriving that translation.
func Mirror(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(tsoserr.ErrPermissionCopyFailed, "stat %s: %s", src, err)
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return errors.Wrapf(tsoserr.ErrPermissionCopyFailed, "stat %s: unsupported platform", src)
	}

	slog.Debug("copying ownership", "src", src, "dst", dst, "uid", st.Uid, "gid", st.Gid)
	if err := os.Chown(dst, int(st.Uid), int(st.Gid)); err != nil {
		return errors.Wrapf(tsoserr.ErrOwnershipCopyFailed, "chown %s: %s", dst, err)
	}

	rawMode := st.Mode & 0o7777
	slog.Debug("copying mode bits", "src", src, "dst", dst, "mode", rawMode)
	if err := unix.Chmod(dst, uint32(rawMode)); err != nil {
		return errors.Wrapf(tsoserr.ErrPermissionCopyFailed, "chmod %s: %s", dst, err)
	}
	return nil
}
