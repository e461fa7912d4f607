// Copyright 2026 Harald Albrecht.
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

//go:build linux

package netnspin

import (
	"golang.org/x/sys/unix"
)

// NewTransient creates a new network namespace, but doesn't enter it. Instead,
// it returns an anonymous handle referencing the new network namespace. The
// new network namespace lives only as long as there are references to it, so
// usually until the returned handle gets closed.
//
// When NewTransient returns, the caller's go routine is in the same OS-level
// thread lock/unlock state as before the call, unless restoring the original
// network namespace failed.
func NewTransient() (h *Handle, err error) {
	defer func() {
		// don't leak the new network namespace when failing to restore.
		if err != nil && h != nil {
			_ = h.Close()
			h = nil
		}
	}()

	// As Linux only allows us to create a new namespace in combination with
	// immediately entering it, we first need to (literally!) get hold of our
	// current network namespace, so we can later re-attach our OS-level thread
	// to it again.
	release, err := pin()
	if err != nil {
		return nil, err
	}
	defer release(&err)

	if err := unix.Unshare(unix.CLONE_NEWNET); err != nil {
		return nil, newError("unshare", "", err)
	}
	return Current()
}
