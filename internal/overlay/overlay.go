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

// Package overlay drives the secret-overlay preparation pipeline: namespace
// isolation, staging, provider resolution and invocation, permission
// mirroring, and the final bind mount, for every (provider, [templates])
// entry in the configuration.
package overlay

import (
	"log/slog"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/flashsystems/tsos/internal/config"
	"github.com/flashsystems/tsos/internal/mntns"
	"github.com/flashsystems/tsos/internal/permission"
	"github.com/flashsystems/tsos/internal/provider"
	"github.com/flashsystems/tsos/internal/staging"
	"github.com/flashsystems/tsos/internal/tsoserr"
)

// Pipeline prepares overlays for one config. Its zero value is not usable;
// construct one with Prepare.
type Pipeline struct {
	staging *staging.Area
}

// Prepare drives NamespaceIsolator, then StagingArea, then for every
// secret entry: resolves its provider once, and for every template in that
// secret's list, in order, mints a destination, runs the provider, mirrors
// permissions, and binds the result over the template.
//
// Secrets are processed in sorted-name order; nothing in the pipeline
// depends on cross-secret order, but a stable order makes failures
// reproducible. Template order within one secret's list is always
// preserved (P6).
//
// On success, Prepare returns a live Pipeline whose staging area the
// caller MUST Drop once, and only once, immediately before replacing the
// process image — never after.
func Prepare(cfg *config.Config) (*Pipeline, error) {
	if err := mntns.Isolate(); err != nil {
		return nil, err
	}

	area, err := staging.New("tsos")
	if err != nil {
		return nil, err
	}
	p := &Pipeline{staging: area}

	searchPath := cfg.EffectiveSearchPath()

	names := make([]string, 0, len(cfg.Secrets))
	for name := range cfg.Secrets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		templates := cfg.Secrets[name]

		leaf, err := provider.SafeName(name)
		if err != nil {
			p.staging.Drop()
			return nil, err
		}

		providerPath, found := provider.Resolve(searchPath, leaf)
		if !found {
			p.staging.Drop()
			return nil, errors.Wrapf(tsoserr.ErrProviderNotFound, "%q", leaf)
		}

		for _, template := range templates {
			if err := overlayOne(area, providerPath, leaf, template); err != nil {
				p.staging.Drop()
				return nil, err
			}
		}
	}

	return p, nil
}

func overlayOne(area *staging.Area, providerPath, name, template string) error {
	info, err := os.Stat(template)
	if err != nil || !info.Mode().IsRegular() {
		return errors.Wrapf(tsoserr.ErrTemplateNotFound, "%s: %s", name, template)
	}

	dst, err := area.Mint("tsos-final")
	if err != nil {
		return err
	}

	slog.Info("rendering secret", "provider", name, "template", template)
	if err := provider.Run(providerPath, template, dst); err != nil {
		return err
	}
	if err := permission.Mirror(template, dst); err != nil {
		return err
	}
	if err := mntns.Bind(dst, template); err != nil {
		return err
	}
	slog.Debug("overlay bound", "template", template, "rendered", dst)
	return nil
}

// Drop releases the staging area. It must be called exactly once, after
// every overlay has been prepared and before the process image is
// replaced; calling it any later would leave the tmpfs mounted with the
// wrong lifetime for the target process.
func (p *Pipeline) Drop() {
	p.staging.Drop()
}
