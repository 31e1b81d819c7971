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

// Package launch wires configuration loading, overlay preparation, and
// privilege adjustment together, ending in an in-place exec that replaces
// the TSOS process image with the configured target.
//
// WARNING: Run ends in an exec. No destructor running after that point
// will ever fire; all RAII for owning handles (the staging area in
// particular) happens inside Run's preparation scope, which returns before
// exec is reached, mirroring the original implementation's split between
// prepare() and main()'s tail call into exec().
package launch

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/flashsystems/tsos/internal/config"
	"github.com/flashsystems/tsos/internal/identity"
	"github.com/flashsystems/tsos/internal/overlay"
	"github.com/flashsystems/tsos/internal/tsoserr"
	"github.com/flashsystems/tsos/internal/tsoslog"
)

// Run is the entire program behind cmd/tsos: parse environment and argv,
// load config, prepare overlays, adjust privileges, and exec. It only
// returns when something fails before the exec call; on success the
// process image is gone and Run never returns at all.
func Run(argv []string) int {
	tsoslog.Init(tsoslog.ParseLevel(os.Getenv("TSOS_LOG")), tsoslog.ForceJournal())

	if len(argv) < 2 {
		slog.Error("missing configuration file command line parameter")
		return tsoserr.ExitMissingConfigArg
	}
	configPath := argv[1]
	forwarded := argv[2:]

	cfg, err := config.Load(configPath, os.Getenv("TSOS_PATH"))
	if err != nil {
		slog.Error("loading configuration failed", "path", configPath, "error", err)
		return tsoserr.ExitCode(err, tsoserr.ExitConfigError)
	}

	argvOut, env, err := prepare(cfg, forwarded)
	if err != nil {
		slog.Error("preparing launch failed", "exec", cfg.Exec, "error", err)
		return tsoserr.ExitCode(err, tsoserr.ExitOverlayError)
	}

	slog.Debug("replacing process image", "exec", cfg.Exec)
	if err := unix.Exec(cfg.Exec, argvOut, env); err != nil {
		slog.Error("exec failed", "exec", cfg.Exec, "error", err)
		return tsoserr.ExitExecFailed
	}

	// unix.Exec only returns on failure; reaching here is unreachable on a
	// successful launch.
	return tsoserr.ExitOK
}

// prepare is the entire scope whose owning handles (the overlay pipeline's
// staging area, above all) must release before Run calls exec. It builds
// the overlays, resolves the target uid/gid, applies them to this process
// directly (Go's unix.Exec is a true in-place image replacement with no
// fork, unlike the original implementation's Command::exec which forks
// under the hood and applies uid/gid as part of that), and returns only
// the argv/envp exec needs.
func prepare(cfg *config.Config, forwarded []string) (argv []string, env []string, err error) {
	pipeline, err := overlay.Prepare(cfg)
	if err != nil {
		return nil, nil, err
	}
	// Staging must be torn down before exec (see the package doc), and
	// before privileges are adjusted: unmounting it needs the privileges
	// TSOS started with.
	pipeline.Drop()

	if err := applyPrivileges(cfg); err != nil {
		return nil, nil, err
	}

	argv = append([]string{cfg.Exec}, forwarded...)
	env = os.Environ()
	return argv, env, nil
}

// applyPrivileges resolves the configured uid/gid and applies them to the
// current process via setresgid/setresuid, gid first: dropping the uid
// last keeps the process privileged enough to still change its gid.
func applyPrivileges(cfg *config.Config) error {
	var uid, gid uint32
	var haveUID, haveGID bool

	if cfg.Uid != nil {
		var err error
		if cfg.Uid.Numeric {
			uid, gid, err = identity.ResolveUID(cfg.Uid.Num)
		} else {
			uid, gid, err = identity.ResolveUser(cfg.Uid.Text)
		}
		if err != nil {
			return err
		}
		haveUID, haveGID = true, true
	}

	if cfg.Gid != nil {
		if cfg.Gid.Numeric {
			gid = cfg.Gid.Num
		} else {
			resolved, err := identity.ResolveGroup(cfg.Gid.Text)
			if err != nil {
				return err
			}
			gid = resolved
		}
		haveGID = true
	}

	if haveGID {
		slog.Debug("setting gid", "gid", gid)
		if err := unix.Setresgid(int(gid), int(gid), int(gid)); err != nil {
			return errors.Wrapf(tsoserr.ErrPrivilegeSetFailed, "setresgid(%d): %s", gid, err)
		}
	}
	if haveUID {
		slog.Debug("setting uid", "uid", uid)
		if err := unix.Setresuid(int(uid), int(uid), int(uid)); err != nil {
			return errors.Wrapf(tsoserr.ErrPrivilegeSetFailed, "setresuid(%d): %s", uid, err)
		}
	}
	return nil
}
