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

// Package staging implements the tmpfs-backed area that holds rendered
// secrets between a provider's run and the bind mount that overlays them
// onto their template path, adapted from the original implementation's
// system::tempdir and system::ramfs modules.
package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/flashsystems/tsos/internal/tsoserr"
)

// Area owns a tmpfs-backed directory and mints uniquely-named files inside
// it. The zero value is not usable; construct one with New.
type Area struct {
	path   string
	nextID uint32
}

// New creates a fresh staging area under the system temp root named
// "<prefix>-<unique suffix>" (mode 0700, reserved atomically the same way
// mkdtemp(3) does via os.MkdirTemp — no mkdtemp(3) binding exists anywhere
// in the reference corpus, so this one corner stays on the standard
// library), then mounts a ramfs-class filesystem on top of it with
// mode=0701 and MS_NODEV|MS_NOEXEC, followed by a private remount so the
// mount never propagates outside this process's namespace.
func New(prefix string) (*Area, error) {
	dir, err := os.MkdirTemp(os.TempDir(), prefix+"-")
	if err != nil {
		return nil, errors.Wrapf(tsoserr.ErrStagingCreateFailed, "creating staging directory: %s", err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		_ = os.Remove(dir)
		return nil, errors.Wrapf(tsoserr.ErrStagingCreateFailed, "setting mode on staging directory %s: %s", dir, err)
	}
	slog.Debug("allocated staging directory", "path", dir)

	if err := unix.Mount("tsos-staging", dir, "ramfs", unix.MS_NODEV|unix.MS_NOEXEC, "mode=0701"); err != nil {
		_ = os.Remove(dir)
		return nil, errors.Wrapf(tsoserr.ErrStagingMountFailed, "mounting ramfs on %s: %s", dir, err)
	}
	if err := unix.Mount("none", dir, "", unix.MS_PRIVATE, ""); err != nil {
		_ = unix.Unmount(dir, 0)
		_ = os.Remove(dir)
		return nil, errors.Wrapf(tsoserr.ErrStagingMountFailed, "making %s private: %s", dir, err)
	}

	return &Area{path: dir}, nil
}

// Path returns the staging area's directory.
func (a *Area) Path() string {
	return a.path
}

// Mint creates and reserves a new, uniquely-named regular file inside the
// staging area, named "<prefix>-<8 hex digits>", and returns its path. The
// file is created with O_CREAT|O_NOFOLLOW|O_TRUNC|O_WRONLY and mode 0700,
// then immediately closed: callers that need to write to it (namely
// ProviderRunner, indirectly via the provider process) reopen it by path.
func (a *Area) Mint(prefix string) (string, error) {
	name := fmt.Sprintf("%s-%08x", prefix, a.nextID)
	a.nextID++
	path := filepath.Join(a.path, name)

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_NOFOLLOW|unix.O_TRUNC|unix.O_WRONLY, 0o700)
	if err != nil {
		return "", errors.Wrapf(tsoserr.ErrStagingCreateFailed, "minting %s: %s", path, err)
	}
	if err := unix.Close(fd); err != nil {
		return "", errors.Wrapf(tsoserr.ErrStagingCreateFailed, "closing minted file %s: %s", path, err)
	}

	slog.Debug("minted staging file", "path", path)
	return path, nil
}

// Drop unmounts the tmpfs and removes the staging directory. Errors are
// logged but not returned: Drop must be infallible from the caller's
// perspective, since it is typically invoked during cleanup of an already
// failing pipeline and, on the success path, must be callable from a defer
// that runs just before exec.
func (a *Area) Drop() {
	if a == nil || a.path == "" {
		return
	}
	if err := unix.Unmount(a.path, 0); err != nil {
		slog.Warn("unmounting staging area failed", "path", a.path, "error", err)
	}
	if err := os.RemoveAll(a.path); err != nil {
		slog.Warn("removing staging directory failed", "path", a.path, "error", err)
	}
	a.path = ""
}
