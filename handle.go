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

package netnspin

import (
	"os"
	"sync"
)

// Handle references a network namespace by an open file descriptor that it
// exclusively owns. As long as a Handle isn't closed, the network namespace it
// references is kept alive, even if it has no processes attached anymore and
// isn't bind-mounted anywhere.
//
// Handles for named network namespaces additionally carry the name and the
// path where the network namespace is bind-mounted. Anonymous handles, such as
// those returned by [Current] and [NewTransient], have neither.
//
// Except for closing, a Handle never changes. A Handle may be used and closed
// concurrently; operations racing a Close either complete on the still-open
// file descriptor or fail with [ErrInvalidNamespace], but never act on a
// closed or reused file descriptor number. In order to share a network
// namespace between independent parts of a program, get separate handles
// instead of passing around the raw file descriptor of a single one.
type Handle struct {
	mu   sync.Mutex
	fd   int
	name string
	path string
}

func newHandle(fd int, name, path string) *Handle {
	return &Handle{fd: fd, name: name, path: path}
}

// Name returns the name of the network namespace, or "" if it is anonymous.
func (h *Handle) Name() string { return h.name }

// Path returns the VFS path where the network namespace is bind-mounted, or ""
// if it is anonymous.
func (h *Handle) Path() string { return h.path }

// Fd returns the file descriptor referencing the network namespace, or -1 if
// the handle has been closed. The file descriptor remains owned by the handle,
// so callers must not close it and must not use it after closing the handle;
// use [Handle.Dup] where the handle might get closed concurrently.
func (h *Handle) Fd() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fd
}

// Close the handle's file descriptor. Closing a handle more than once is not
// an error. Please note that closing never removes a bind-mounted network
// namespace; use [Store.Remove] for this.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fd < 0 {
		return nil
	}
	fd := h.fd
	h.fd = -1
	if err := closeFd(fd); err != nil {
		return newError("close", h.path, err)
	}
	return nil
}

// withFd calls fn with the handle's file descriptor while holding the handle's
// lock, so that the file descriptor cannot get closed while fn uses it. fn
// must not block. withFd fails without calling fn if the handle is nil or
// closed.
func (h *Handle) withFd(op string, fn func(fd int) error) error {
	if h == nil {
		return &Error{Op: op, Kind: ErrInvalidNamespace}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fd < 0 {
		return &Error{Op: op, Path: h.path, Kind: ErrInvalidNamespace, Err: os.ErrClosed}
	}
	return fn(h.fd)
}
