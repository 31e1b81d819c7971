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

// Package tsos is a privileged launcher that renders secrets from external
// "provider" programs and overlays them onto template files inside a
// private mount namespace, before replacing itself with the configured
// target executable via exec.
//
// The pipeline lives across internal/mntns (namespace isolation and bind
// mounts), internal/staging (the tmpfs-backed rendering area),
// internal/provider (provider discovery and invocation),
// internal/permission (mode/ownership mirroring), internal/identity
// (user/group resolution), internal/overlay (the pipeline that drives all
// of the above), and internal/launch (the final privilege adjustment and
// exec). cmd/tsos is the command-line entry point.
package tsos
