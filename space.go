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
	"errors"
	"fmt"

	"github.com/thediveo/ioctl"
	"github.com/vishvananda/netns"
	"golang.org/x/sys/unix"
)

// Linux kernel [ioctl(2)] command for [namespace relationship queries].
//
// [ioctl(2)]: https://man7.org/linux/man-pages/man2/ioctl.2.html
// [namespace relationship queries]: https://elixir.bootlin.com/linux/v6.2.11/source/include/uapi/linux/nsfs.h
const _NSIO = 0xb7

// Returns the type of namespace CLONE_NEW* value referred to by a file
// descriptor.
var NS_GET_NSTYPE = ioctl.IO(_NSIO, 0x3)

// The calling OS-level thread's current network namespace. Please note that
// “/proc/self/ns/net” would instead refer to the network namespace of the
// process's initial thread, which isn't necessarily the same.
const threadNetns = "/proc/thread-self/ns/net"

// Current returns an anonymous handle to the network namespace of the calling
// OS-level thread. Please note that the caller's go routine should be
// thread-locked ([runtime.LockOSThread]), as otherwise the result is rather
// arbitrary.
func Current() (*Handle, error) {
	fd, err := unix.Open(threadNetns, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, newError("open", threadNetns, err)
	}
	return newHandle(fd, "", ""), nil
}

// OpenPath returns an anonymous handle to the network namespace referenced by
// the passed VFS path, such as “/proc/42/ns/net” or a bind-mounted namespace.
// It fails with [ErrInvalidNamespace] if path doesn't reference a network
// namespace.
func OpenPath(path string) (*Handle, error) {
	fd, err := openNetns("open", path)
	if err != nil {
		return nil, err
	}
	return newHandle(fd, "", ""), nil
}

// FromFd returns a handle taking ownership of the passed file descriptor, such
// as one received from another process. The name and path are informational
// only. FromFd fails with [ErrInvalidNamespace] if fd doesn't reference a
// network namespace; the passed file descriptor is closed in any case of
// error.
func FromFd(fd int, name, path string) (*Handle, error) {
	if fd < 0 {
		return nil, &Error{Op: "fstat", Path: path, Kind: ErrInvalidNamespace, Err: unix.EBADF}
	}
	if err := checkNetns(fd); err != nil {
		_ = unix.Close(fd)
		return nil, &Error{Op: "fstat", Path: path, Kind: ErrInvalidNamespace, Err: err}
	}
	return newHandle(fd, name, path), nil
}

// openNetns opens the specified VFS path and checks that it references a
// network namespace, returning the open file descriptor.
func openNetns(op, path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, newError(op, path, err)
	}
	if err := checkNetns(fd); err != nil {
		_ = unix.Close(fd)
		return -1, &Error{Op: op, Path: path, Kind: ErrInvalidNamespace, Err: err}
	}
	return fd, nil
}

// checkNetns returns nil if the passed file descriptor references a network
// namespace; otherwise, it returns an error describing the mismatch.
func checkNetns(fd int) error {
	var fs unix.Statfs_t
	if err := unix.Fstatfs(fd, &fs); err != nil {
		return err
	}
	if fs.Type != unix.NSFS_MAGIC {
		// Most probably an empty mount point file with nothing mounted on it.
		return fmt.Errorf("not a namespace (filesystem magic %#x)", fs.Type)
	}
	typ, err := unix.IoctlRetInt(fd, NS_GET_NSTYPE)
	if err != nil {
		if errors.Is(err, unix.ENOTTY) {
			// Kernels before 4.11 don't know NS_GET_NSTYPE, so the nsfs check
			// must do.
			return nil
		}
		return err
	}
	if typ != unix.CLONE_NEWNET {
		return fmt.Errorf("not a network namespace (type %#x)", typ)
	}
	return nil
}

func closeFd(fd int) error {
	return unix.Close(fd)
}

// Ino returns the identification (inode number) of the network namespace
// referenced by this handle.
func (h *Handle) Ino() (uint64, error) {
	var st unix.Stat_t
	if err := h.withFd("stat", func(fd int) error {
		if err := unix.Fstat(fd, &st); err != nil {
			return newError("stat", h.path, err)
		}
		return nil
	}); err != nil {
		return 0, err
	}
	return st.Ino, nil
}

// Dup returns a new file descriptor referencing the same network namespace.
// The caller owns the returned file descriptor and is responsible for closing
// it; it stays valid even after this handle has been closed.
func (h *Handle) Dup() (int, error) {
	dupfd := -1
	if err := h.withFd("dup", func(fd int) error {
		var err error
		dupfd, err = unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
		if err != nil {
			return newError("dup", h.path, err)
		}
		return nil
	}); err != nil {
		return -1, err
	}
	return dupfd, nil
}

// uniqueId returns the dev:ino identification of the referenced network
// namespace, or "" if the handle is nil or closed.
func (h *Handle) uniqueId() string {
	var id string
	_ = h.withFd("stat", func(fd int) error {
		var st unix.Stat_t
		if unix.Fstat(fd, &st) == nil {
			id = netns.NsHandle(fd).UniqueId()
		}
		return nil
	})
	return id
}

// Equal returns true if both handles reference the same network namespace,
// regardless of the names and paths they were obtained by. Closed handles
// never equal anything.
func (h *Handle) Equal(other *Handle) bool {
	if h == nil || other == nil {
		return false
	}
	id := h.uniqueId()
	return id != "" && id == other.uniqueId()
}

// NsHandle returns a non-owning [netns.NsHandle] view on this handle for use
// with packages building on [github.com/vishvananda/netns]. The returned
// NsHandle must not be closed and becomes invalid when this handle is closed.
func (h *Handle) NsHandle() netns.NsHandle {
	return netns.NsHandle(h.Fd())
}

func (h *Handle) String() string {
	id := h.uniqueId()
	if id == "" {
		return fmt.Sprintf("netns{name: %q, path: %q, closed}", h.name, h.path)
	}
	return fmt.Sprintf("netns{name: %q, path: %q, %s}", h.name, h.path, id)
}
