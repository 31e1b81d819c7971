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

// Package identity translates user/group names or numeric ids to (uid,
// gid) pairs, the way the original implementation used the re-entrant
// getpwnam_r/getpwuid_r/getgrnam_r calls.
//
// Go's os/user package already wraps the platform's NSS lookups (cgo when
// available, with a pure-Go /etc/passwd and /etc/group fallback); no
// ecosystem library in the reference corpus wraps name-service lookups any
// more directly than os/user already does, so this package is a thin,
// intentionally stdlib-only adapter rather than a reimplementation of
// buffer-sized re-entrant calls.
package identity

import (
	"os/user"
	"strconv"

	"github.com/pkg/errors"

	"github.com/flashsystems/tsos/internal/tsoserr"
)

// ResolveUser looks up name and returns its uid and primary gid.
func ResolveUser(name string) (uid, gid uint32, err error) {
	u, lookErr := user.Lookup(name)
	if lookErr != nil {
		return 0, 0, errors.Wrapf(tsoserr.ErrUserNotFound, "%q: %s", name, lookErr)
	}
	uid64, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return 0, 0, errors.Wrapf(tsoserr.ErrUserNotFound, "%q: malformed uid %q", name, u.Uid)
	}
	gid64, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return 0, 0, errors.Wrapf(tsoserr.ErrUserNotFound, "%q: malformed gid %q", name, u.Gid)
	}
	return uint32(uid64), uint32(gid64), nil
}

// ResolveUID looks up a numeric uid and returns it unchanged alongside its
// primary gid, for the case where the config specifies uid numerically but
// TSOS still needs the default gid.
func ResolveUID(uid uint32) (outUid, gid uint32, err error) {
	u, lookErr := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if lookErr != nil {
		return 0, 0, errors.Wrapf(tsoserr.ErrUserNotFound, "uid %d: %s", uid, lookErr)
	}
	g, convErr := strconv.ParseUint(u.Gid, 10, 32)
	if convErr != nil {
		return 0, 0, errors.Wrapf(tsoserr.ErrUserNotFound, "uid %d: malformed gid %q", uid, u.Gid)
	}
	return uid, uint32(g), nil
}

// ResolveGroup looks up name and returns its gid.
func ResolveGroup(name string) (uint32, error) {
	g, lookErr := user.LookupGroup(name)
	if lookErr != nil {
		return 0, errors.Wrapf(tsoserr.ErrGroupNotFound, "%q: %s", name, lookErr)
	}
	gid, convErr := strconv.ParseUint(g.Gid, 10, 32)
	if convErr != nil {
		return 0, errors.Wrapf(tsoserr.ErrGroupNotFound, "%q: malformed gid %q", name, g.Gid)
	}
	return uint32(gid), nil
}
