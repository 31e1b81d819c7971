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

// Package provider locates and invokes the external programs that render
// templates into secrets.
package provider

import (
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/pkg/errors"

	"github.com/flashsystems/tsos/internal/tsoserr"
)

// SafeName reduces name to its final path component and rejects it if that
// component is empty, ".", or "..", matching P8: a name containing "/" is
// reduced, not rejected outright, as long as what remains is a safe leaf.
func SafeName(name string) (string, error) {
	leaf := filepath.Base(name)
	if leaf == "" || leaf == "." || leaf == ".." || leaf == string(filepath.Separator) {
		return "", errors.Wrapf(tsoserr.ErrInvalidSourceName, "%q", name)
	}
	return leaf, nil
}

// Resolve searches searchPath in order for a regular file named name,
// returning the first match. Local entries winning over global ones (P3)
// is a property of the order callers build searchPath in, not of Resolve
// itself: Resolve always stops at the first hit.
//
// securejoin.SecureJoin is used instead of filepath.Join so that a
// maliciously crafted search directory containing symlinks cannot cause
// the lookup to escape it; SafeName has already rejected "." and "..", but
// this still guards against a directory entry that is itself a symlink
// escaping its parent.
func Resolve(searchPath []string, name string) (string, bool) {
	for _, dir := range searchPath {
		dirInfo, err := os.Stat(dir)
		if err != nil || !dirInfo.IsDir() {
			continue
		}
		candidate, err := securejoin.SecureJoin(dir, name)
		if err != nil {
			continue
		}
		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		// TODO: reject providers not owned root:root, or writable by
		// non-root, once a hardened deployment model requires it (noted
		// as an open hardening gap upstream).
		return candidate, true
	}
	return "", false
}
