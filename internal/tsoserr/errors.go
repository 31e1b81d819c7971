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

// Package tsoserr declares the error taxonomy shared by every TSOS
// component and maps it to the process exit codes the Launcher surfaces.
package tsoserr

import "github.com/pkg/errors"

// Sentinel errors identifying the failure kind. Call sites wrap these with
// github.com/pkg/errors.Wrapf to attach the failing entity's name or path;
// errors.Is and errors.Cause both see through the wrapping.
var (
	ErrConfigIO                = errors.New("config: I/O error")
	ErrConfigParse             = errors.New("config: parse error")
	ErrNamespaceUnshareFailed  = errors.New("namespace: unshare failed")
	ErrPropagationChangeFailed = errors.New("namespace: propagation change failed")
	ErrStagingCreateFailed     = errors.New("staging: create failed")
	ErrStagingMountFailed      = errors.New("staging: mount failed")
	ErrInvalidSourceName       = errors.New("provider: invalid source name")
	ErrProviderNotFound        = errors.New("provider: not found")
	ErrTemplateNotFound        = errors.New("template: not found")
	ErrProviderFailed          = errors.New("provider: non-zero exit")
	ErrProviderTerminated      = errors.New("provider: terminated by signal")
	ErrPermissionCopyFailed    = errors.New("permission: copy failed")
	ErrOwnershipCopyFailed     = errors.New("permission: ownership copy failed")
	ErrBindFailed              = errors.New("bind: mount failed")
	ErrUserNotFound            = errors.New("identity: user not found")
	ErrGroupNotFound           = errors.New("identity: group not found")
	ErrPrivilegeSetFailed      = errors.New("privilege: setresuid/setresgid failed")
	ErrOS                      = errors.New("system call failed")
)

// Exit codes, per spec.md §6.
const (
	ExitOK                 = 0
	ExitMissingConfigArg   = 1
	ExitConfigError        = 2
	ExitOverlayError       = 3
	ExitPrivilegeError     = 4
	ExitExecFailed         = 5
)

// phase groups sentinels by the pipeline phase that produces them, which
// determines the exit code the Launcher uses.
var phase = map[error]int{
	ErrConfigIO:                ExitConfigError,
	ErrConfigParse:             ExitConfigError,
	ErrNamespaceUnshareFailed:  ExitOverlayError,
	ErrPropagationChangeFailed: ExitOverlayError,
	ErrStagingCreateFailed:     ExitOverlayError,
	ErrStagingMountFailed:      ExitOverlayError,
	ErrInvalidSourceName:       ExitOverlayError,
	ErrProviderNotFound:        ExitOverlayError,
	ErrTemplateNotFound:        ExitOverlayError,
	ErrProviderFailed:          ExitOverlayError,
	ErrProviderTerminated:      ExitOverlayError,
	ErrPermissionCopyFailed:    ExitOverlayError,
	ErrOwnershipCopyFailed:     ExitOverlayError,
	ErrBindFailed:              ExitOverlayError,
	ErrUserNotFound:            ExitPrivilegeError,
	ErrGroupNotFound:           ExitPrivilegeError,
	ErrPrivilegeSetFailed:      ExitPrivilegeError,
}

// ExitCode returns the process exit code that corresponds to err's sentinel,
// walking the error's cause chain. Errors that don't match any known
// sentinel fall back to the caller-supplied code, since the caller already
// knows which phase it is calling from.
func ExitCode(err error, fallback int) int {
	if err == nil {
		return ExitOK
	}
	for sentinel, code := range phase {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return fallback
}
