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
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// mountMu serializes preparing namespace directories process-wide.
var mountMu sync.Mutex

// EnsureDirectory creates the Store's directory if necessary and makes sure
// that it is a mount point with private mount propagation, so that the
// network namespaces bind-mounted into it don't show up in other mount
// namespaces. Only privileged users are allowed to place entries into the
// directory, so EnsureDirectory also restricts the permissions of an already
// existing directory to 0755. EnsureDirectory is idempotent; [Store.Create]
// calls it automatically.
func (s *Store) EnsureDirectory() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prepared {
		return nil
	}

	fi, err := os.Stat(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return newError("mkdir", s.dir, err)
		}
		fi, err = os.Stat(s.dir)
	}
	if err != nil {
		return newError("stat", s.dir, err)
	}
	if !fi.IsDir() {
		return &Error{Op: "stat", Path: s.dir, Kind: ErrIO, Err: unix.ENOTDIR}
	}
	// Entries are for privileged users only; also undoes the umask.
	if fi.Mode().Perm() != 0o755 {
		if err := os.Chmod(s.dir, 0o755); err != nil {
			return newError("chmod", s.dir, err)
		}
	}

	// Different Stores on the same directory must not stack self bind mounts.
	mountMu.Lock()
	defer mountMu.Unlock()

	// Remounting the directory as private fails if it isn't a mount point
	// yet, so bind-mount it onto itself in order to "upgrade" it into a mount
	// point. The recursive flag carries over any already existing network
	// namespace bind mounts.
	boundOntoItself := false
	for {
		err := unix.Mount("", s.dir, "none", unix.MS_PRIVATE|unix.MS_REC, "")
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EINVAL) || boundOntoItself {
			return newError("mount --make-rprivate", s.dir, err)
		}
		if err := unix.Mount(s.dir, s.dir, "none", unix.MS_BIND|unix.MS_REC, ""); err != nil {
			return newError("mount --rbind", s.dir, err)
		}
		boundOntoItself = true
	}
	s.prepared = true
	s.log.Debug("prepared network namespace directory", slog.String("dir", s.dir))
	return nil
}

// Create creates a new network namespace and bind-mounts it under the passed
// name, returning a handle to it. The caller's OS-level thread is not switched
// into the new network namespace.
//
// If another network namespace (or some stale file) of the same name already
// exists, Create fails with an [ErrAlreadyExists] error. Of multiple
// concurrent callers creating the same name, exactly one succeeds.
//
// When the existing entry doesn't reference a network namespace, the error
// additionally matches [ErrStale], so callers might [Store.Remove] it and
// retry. Please note that a concurrent Create of the same name that hasn't
// finished yet looks stale too.
func (s *Store) Create(name string) (*Handle, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureDirectory(); err != nil {
		return nil, err
	}

	// Create an empty file to bind-mount onto; O_EXCL makes sure that we are
	// the only ones going to use this mount point.
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CREAT|unix.O_EXCL|unix.O_CLOEXEC, 0)
	if err != nil {
		e := newError("create", path, err)
		if e.Kind == ErrAlreadyExists {
			// Tell stale debris apart from an existing network namespace.
			if fd, err := openNetns("open", path); err == nil {
				_ = unix.Close(fd)
			} else {
				e.Err = errors.Join(ErrStale, e.Err)
			}
		}
		return nil, e
	}
	_ = unix.Close(fd)

	mounted, err := publish(path)
	if err != nil {
		if mounted {
			if err := unix.Unmount(path, unix.MNT_DETACH); err != nil {
				s.log.Warn("cannot unmount network namespace after failed creation",
					slog.String("path", path),
					slog.String("err", err.Error()))
			}
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("cannot remove mount point after failed creation",
				slog.String("path", path),
				slog.String("err", err.Error()))
		}
		return nil, err
	}

	fd, err = openNetns("open", path)
	if err != nil {
		_ = s.Remove(name)
		return nil, err
	}
	s.log.Debug("created network namespace",
		slog.String("name", name),
		slog.String("path", path))
	return newHandle(fd, name, path), nil
}

// publish creates a new network namespace and bind-mounts it onto the existing
// path, without leaving the caller's OS-level thread attached to the new
// network namespace. It reports whether the bind mount is in place, which
// might be the case even when failing to restore the original network
// namespace.
func publish(path string) (mounted bool, err error) {
	release, err := pin()
	if err != nil {
		return false, err
	}
	defer release(&err)

	if err := unix.Unshare(unix.CLONE_NEWNET); err != nil {
		return false, newError("unshare", "", err)
	}
	// Bind-mount the new network namespace of our OS-level thread onto the
	// mount point; this keeps the network namespace alive even after we've
	// left it and there are no other references.
	if err := unix.Mount(threadNetns, path, "none", unix.MS_BIND, ""); err != nil {
		return false, newError("mount", path, err)
	}
	return true, nil
}

// Get returns a handle to the existing network namespace of the passed name.
// It fails with an [ErrNotFound] error if there is no such network namespace,
// and with an [ErrInvalidNamespace] error if there's only a stale file, such
// as left behind after a failed creation.
func (s *Store) Get(name string) (*Handle, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	fd, err := openNetns("open", path)
	if err != nil {
		return nil, err
	}
	return newHandle(fd, name, path), nil
}

// Remove unmounts and deletes the network namespace of the passed name. The
// network namespace itself lives on as long as there are still other
// references to it, such as open handles or attached processes. Removing a
// non-existing or only partially created network namespace succeeds.
func (s *Store) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	// not mounted (EINVAL) or already gone (ENOENT) is fine with us.
	if err := unix.Unmount(path, unix.MNT_DETACH); err != nil &&
		!errors.Is(err, unix.EINVAL) && !errors.Is(err, unix.ENOENT) {
		return newError("unmount", path, err)
	}
	if err := unix.Unlink(path); err != nil && !errors.Is(err, unix.ENOENT) {
		return newError("unlink", path, err)
	}
	s.log.Debug("removed network namespace",
		slog.String("name", name),
		slog.String("path", path))
	return nil
}

// List returns the names of all entries in the Store's directory, including
// stale entries left behind by failed creations. A missing directory is the
// same as an empty one.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, newError("readdir", s.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
