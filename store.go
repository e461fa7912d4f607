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
	"cmp"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultDirectory is where “ip netns” expects bind-mounted network
// namespaces, so named network namespaces created by a Store using this
// directory show up there too.
const DefaultDirectory = "/var/run/netns"

// Store manages named network namespaces that are bind-mounted into a single
// directory. All methods of a Store are safe for concurrent use; operations on
// different names never interfere with each other.
type Store struct {
	dir string
	log *slog.Logger

	mu       sync.Mutex // protects prepared
	prepared bool       // directory exists and is a private mount point
}

// Option configures a [Store] when calling [New].
type Option func(*Store)

// WithDirectory sets the directory for bind-mounting named network namespaces
// into, instead of [DefaultDirectory].
func WithDirectory(dir string) Option {
	return func(s *Store) { s.dir = dir }
}

// WithLogger sets the logger to use instead of the [slog.Default] logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New returns a Store for named network namespaces, configured by the passed
// options.
func New(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	s.dir = filepath.Clean(cmp.Or(s.dir, DefaultDirectory))
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Directory returns the directory the named network namespaces of this Store
// are bind-mounted into.
func (s *Store) Directory() string { return s.dir }

// Path returns the VFS path for the network namespace of the passed name. It
// returns an [ErrInvalidName] error if the name is empty, contains slashes or
// NUL characters, or is one of the special names "." and "..".
func (s *Store) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, "/\x00") {
		return "", &Error{Op: "path", Path: name, Kind: ErrInvalidName}
	}
	return filepath.Join(s.dir, name), nil
}

// Exists returns true if a network namespace of the passed name is currently
// bind-mounted. It returns false in all other cases, including invalid names,
// stale files, and missing permissions.
func (s *Store) Exists(name string) bool {
	h, err := s.Get(name)
	if err != nil {
		return false
	}
	_ = h.Close()
	return true
}

// RunIn executes fn synchronously while attached to the network namespace of
// the passed name, passing fn a handle to this network namespace. The handle
// is closed when RunIn returns. See [RunIn] for the details of switching
// network namespaces.
func (s *Store) RunIn(name string, fn func(*Handle) error) error {
	h, err := s.Get(name)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()
	return h.Do(func() error { return fn(h) })
}

// RemoveAll removes all entries of the Store's directory, as returned by
// [Store.List].
func (s *Store) RemoveAll() error {
	names, err := s.List()
	if err != nil {
		return err
	}
	var eg errgroup.Group
	eg.SetLimit(8)
	for _, name := range names {
		eg.Go(func() error { return s.Remove(name) })
	}
	return eg.Wait()
}
