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

//go:build !linux

package netnspin

import (
	"fmt"
	"runtime"
)

func unsupported(op, path string) error {
	return &Error{
		Op:   op,
		Path: path,
		Kind: ErrUnsupportedPlatform,
		Err:  fmt.Errorf("GOOS %s", runtime.GOOS),
	}
}

// Current is not supported on this platform.
func Current() (*Handle, error) { return nil, unsupported("open", "") }

// OpenPath is not supported on this platform.
func OpenPath(path string) (*Handle, error) { return nil, unsupported("open", path) }

// FromFd is not supported on this platform.
func FromFd(fd int, name, path string) (*Handle, error) { return nil, unsupported("fstat", path) }

// NewTransient is not supported on this platform.
func NewTransient() (*Handle, error) { return nil, unsupported("unshare", "") }

// RunIn is not supported on this platform; it never calls fn.
func RunIn[R any](target *Handle, fn func() (R, error)) (R, error) {
	var zero R
	return zero, unsupported("setns", "")
}

// Do is not supported on this platform; it never calls fn.
func (h *Handle) Do(fn func() error) error { return unsupported("setns", "") }

// Ino is not supported on this platform.
func (h *Handle) Ino() (uint64, error) { return 0, unsupported("stat", h.path) }

// Dup is not supported on this platform.
func (h *Handle) Dup() (int, error) { return -1, unsupported("dup", h.path) }

// Equal always returns false on this platform.
func (h *Handle) Equal(other *Handle) bool { return false }

func (h *Handle) String() string {
	return fmt.Sprintf("netns{name: %q, path: %q}", h.name, h.path)
}

func closeFd(int) error { return unsupported("close", "") }

// EnsureDirectory is not supported on this platform.
func (s *Store) EnsureDirectory() error { return unsupported("mkdir", s.dir) }

// Create is not supported on this platform.
func (s *Store) Create(name string) (*Handle, error) {
	return nil, unsupported("create", name)
}

// Get is not supported on this platform.
func (s *Store) Get(name string) (*Handle, error) { return nil, unsupported("open", name) }

// Remove is not supported on this platform.
func (s *Store) Remove(name string) error { return unsupported("unlink", name) }

// List is not supported on this platform.
func (s *Store) List() ([]string, error) { return nil, unsupported("readdir", s.dir) }
