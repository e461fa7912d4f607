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

package uds

import (
	"errors"
	"io"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Conn represents a (stream) unix domain socket connection transferring
// network namespace handles, using [Conn.SendHandles] and
// [Conn.ReceiveHandles]. It wraps [*net.UnixConn]. Use [NewPair] to create a
// pair of directly peer-to-peer connected Conn objects, such as for handing
// one end to a child process.
type Conn struct {
	*net.UnixConn
}

// NewPair returns a pair of peer-to-peer connected (stream) unix domain
// sockets.
func NewPair() (dupond, dupont *Conn, err error) {
	fdpair, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, os.NewSyscallError("socketpair", err)
	}
	var conns [2]*Conn
	for idx, nickname := range []string{"dupond", "dupont"} {
		conns[idx], err = NewUnixConn(fdpair[idx], nickname)
		if err != nil {
			// NewUnixConn took fdpair[idx] with it.
			for _, fd := range fdpair[idx+1:] {
				_ = unix.Close(fd)
			}
			for _, conn := range conns[:idx] {
				_ = conn.Close()
			}
			return nil, nil, err
		}
	}
	return conns[0], conns[1], nil
}

// NewUnixConn returns a Conn for the passed (stream) unix domain socket fd. It
// always takes ownership of the passed file descriptor, even in case of
// error, so the caller must neither use nor close it afterwards.
func NewUnixConn(udsfd int, nickname string) (*Conn, error) {
	f := os.NewFile(uintptr(udsfd), nickname)
	if f == nil {
		return nil, errors.New("not a file descriptor")
	}
	// net.FileConn works on its own dup, so we always get rid of ours.
	defer func() { _ = f.Close() }()
	netconn, err := net.FileConn(f)
	if err != nil {
		return nil, err
	}
	unixconn, ok := netconn.(*net.UnixConn)
	if !ok {
		_ = netconn.Close()
		return nil, errors.New("not a unix domain socket")
	}
	return &Conn{UnixConn: unixconn}, nil
}

// SendWithFds sends b together with the passed file descriptors as SCM_RIGHTS
// ancillary data in a single message, see [sendmsg(2)]. The kernel duplicates
// the file descriptors for the receiver, so the caller keeps owning them.
//
// [sendmsg(2)]: https://www.man7.org/linux/man-pages/man2/sendmsg.2.html
func (c *Conn) SendWithFds(b []byte, fds ...int) error {
	var oob []byte
	if len(fds) > 0 {
		oob = unix.UnixRights(fds...)
	}
	n, _, err := c.WriteMsgUnix(b, oob, nil)
	if err != nil {
		return err
	}
	if n != len(b) {
		return io.ErrShortWrite
	}
	return nil
}

// ReceiveWithFds reads a single message into b, returning the file
// descriptors of up to maxfds received along with it, as well as the
// recvmsg(2) flags. When flags contain MSG_CTRUNC, the peer sent more file
// descriptors than maxfds and the kernel dropped the excess ones. The caller
// owns all returned file descriptors, even when the flags signal truncation.
func (c *Conn) ReceiveWithFds(b []byte, maxfds int) (n int, fds []int, flags int, err error) {
	oob := make([]byte, unix.CmsgSpace(maxfds*4)) // SCM_RIGHTS carries int32s.
	n, noob, flags, _, err := c.ReadMsgUnix(b, oob)
	if err != nil {
		return 0, nil, 0, err
	}
	cms, err := unix.ParseSocketControlMessage(oob[:noob])
	if err != nil {
		return 0, nil, 0, err
	}
	for _, cm := range cms {
		if cm.Header.Level != unix.SOL_SOCKET || cm.Header.Type != unix.SCM_RIGHTS {
			continue
		}
		rights, err := unix.ParseUnixRights(&cm)
		if err != nil {
			for _, fd := range fds {
				_ = unix.Close(fd)
			}
			return 0, nil, 0, err
		}
		fds = append(fds, rights...)
	}
	return n, fds, flags, nil
}
