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
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/flashsystems/tsos/internal/tsoserr"
)

// Bind bind-mounts source (a rendered file inside the staging tmpfs) onto
// target (a pre-existing regular file, normally the template path), with
// private propagation so the overlay never becomes visible outside this
// process's mount namespace.
//
// The caller is responsible for verifying target already exists as a
// regular file; Bind itself only issues the mount(2) syscall.
func Bind(source, target string) error {
	if err := unix.Mount(source, target, "", unix.MS_BIND|unix.MS_PRIVATE, ""); err != nil {
		return errors.Wrapf(tsoserr.ErrBindFailed, "bind %s onto %s: %s", source, target, err)
	}
	return nil
}
