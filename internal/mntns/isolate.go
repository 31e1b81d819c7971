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

// Package mntns implements TSOS's mount-namespace isolation and the
// private bind-mount used to overlay a rendered secret onto its template
// path. Both concerns live in the same package because they are two facets
// of one thing: a process-private view of the mount table, the way the
// original implementation's system::mod.rs keeps unshare_mount_ns and bind
// side by side.
package mntns

import (
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/flashsystems/tsos/internal/tsoserr"
)

// Isolate unshares the calling goroutine's mount namespace and remounts "/"
// recursively with private propagation, so that none of the mount/bind
// operations TSOS is about to perform are visible outside this process, and
// so that nothing the host later does to its own mounts leaks in.
//
// Isolate locks the calling goroutine to its current OS thread before
// unsharing: unshare(2) only ever affects the calling thread, and without
// the lock the Go runtime would be free to resume this goroutine on a
// different, non-isolated thread after the next blocking call. The lock is
// intentionally never released; TSOS calls Isolate once, early, from the
// single goroutine that runs for the rest of the process's life.
func Isolate() error {
	runtime.LockOSThread()

	if err := unix.Unshare(unix.CLONE_NEWNS); err != nil {
		return errors.Wrapf(tsoserr.ErrNamespaceUnshareFailed, "unshare mount namespace: %s", err)
	}

	// Disable propagation for every mount point we inherited, recursively,
	// so later bind mounts never escape into the host's mount namespace and
	// so host-side mount changes never leak into ours.
	if err := unix.Mount("none", "/", "", unix.MS_REC|unix.MS_PRIVATE, ""); err != nil {
		return errors.Wrapf(tsoserr.ErrPropagationChangeFailed, "remount / private: %s", err)
	}
	return nil
}
