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

package nstest

import (
	"fmt"

	"github.com/thediveo/netnspin"
	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo/v2" //nolint:staticcheck // ST1001 rule does not apply
	. "github.com/onsi/gomega"    //nolint:staticcheck // ST1001 rule does not apply
)

// Reference is a network namespace reference in VFS path textual form, as an
// open file descriptor, or as a [netnspin.Handle].
type Reference interface {
	~int | ~string | *netnspin.Handle
}

// Ino returns the identification (inode number) of the passed network
// namespace that is either referenced by a file descriptor, a VFS path name,
// or a handle.
//
// If the specified reference is invalid or doesn't reference a network
// namespace, Ino fails the current test.
func Ino[R Reference](ref R) uint64 {
	GinkgoHelper()

	var namespaceStat unix.Stat_t
	switch ref := any(ref).(type) {
	case *netnspin.Handle:
		Expect(ref).NotTo(BeNil(), "nil network namespace handle")
		return Ino(ref.Fd())
	case int:
		Expect(unix.Fstat(ref, &namespaceStat)).To(Succeed(),
			func() string {
				return fmt.Sprintf("cannot stat network namespace reference %v", ref)
			})
		Expect(Type(ref)).To(Equal(unix.CLONE_NEWNET),
			"not a network namespace")
	case string:
		Expect(unix.Stat(ref, &namespaceStat)).To(Succeed(),
			func() string {
				return fmt.Sprintf("cannot stat network namespace reference %v", ref)
			})
		fd, err := unix.Open(ref, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		Expect(err).NotTo(HaveOccurred(),
			"cannot open network namespace reference %q", ref)
		defer func() { _ = unix.Close(fd) }()
		Expect(Type(fd)).To(Equal(unix.CLONE_NEWNET),
			"not a network namespace")
	}
	return namespaceStat.Ino
}

// Type returns the type constant for the Linux kernel namespace referenced
// by the passed file descriptor.
//
// If the specified file descriptor doesn't reference a namespace, Type fails
// the current test.
func Type(fd int) int {
	GinkgoHelper()

	typ, err := unix.IoctlRetInt(fd, netnspin.NS_GET_NSTYPE)
	Expect(err).NotTo(HaveOccurred(),
		"cannot determine type of namespace")
	return typ
}

// CurrentIno returns the identification (inode number) of the network
// namespace the calling OS-level thread is currently attached to.
func CurrentIno() uint64 {
	GinkgoHelper()

	return Ino("/proc/thread-self/ns/net")
}
