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

package provider

import (
	"log/slog"
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/flashsystems/tsos/internal/tsoserr"
)

// Run invokes provider with positional arguments (template, dst), inheriting
// the TSOS process's standard descriptors and environment, and blocks until
// the provider terminates.
func Run(providerPath, template, dst string) error {
	cmd := exec.Command(providerPath, template, dst)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	slog.Debug("running provider", "provider", providerPath, "template", template, "dst", dst)
	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Exited() {
			return errors.Wrapf(tsoserr.ErrProviderFailed, "%s exited with status %d", providerPath, exitErr.ExitCode())
		}
		return errors.Wrapf(tsoserr.ErrProviderTerminated, "%s: %s", providerPath, exitErr.Error())
	}
	return errors.Wrapf(tsoserr.ErrProviderFailed, "starting %s: %s", providerPath, err)
}
