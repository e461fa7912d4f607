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
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/thediveo/netnspin"
	"golang.org/x/sys/unix"
)

// maxManifestSize limits the size of the gob-encoded manifest accompanying
// transferred handles.
const maxManifestSize = 8192

// manifest describes the network namespace handles whose file descriptors are
// piggybacked onto the same message, in the same order.
type manifest struct {
	Handles []handleInfo
}

type handleInfo struct {
	Name string
	Path string
}

// ErrTooManyHandles signals that the peer sent more handles than the receiver
// was willing to accept.
var ErrTooManyHandles = errors.New("peer sent more handles than requested")

// SendHandles sends the passed network namespace handles together with their
// names and paths to the peer in a single message. The passed handles stay
// open and owned by the caller.
func (c *Conn) SendHandles(hs ...*netnspin.Handle) error {
	m := manifest{Handles: make([]handleInfo, 0, len(hs))}
	fds := make([]int, 0, len(hs))
	defer func() {
		for _, fd := range fds {
			_ = unix.Close(fd)
		}
	}()
	for _, h := range hs {
		if h == nil {
			return &netnspin.Error{Op: "send", Kind: netnspin.ErrInvalidNamespace}
		}
		// Send our own duplicates, so that the handles may get closed
		// concurrently.
		fd, err := h.Dup()
		if err != nil {
			return err
		}
		fds = append(fds, fd)
		m.Handles = append(m.Handles, handleInfo{Name: h.Name(), Path: h.Path()})
	}
	var buff bytes.Buffer
	if err := gob.NewEncoder(&buff).Encode(m); err != nil {
		return fmt.Errorf("cannot encode handle manifest, reason: %w", err)
	}
	if buff.Len() > maxManifestSize {
		return fmt.Errorf("handle manifest too large (%d bytes)", buff.Len())
	}
	return c.SendWithFds(buff.Bytes(), fds...)
}

// ReceiveHandles receives at most maxHandles network namespace handles sent
// by the peer using [Conn.SendHandles]. The caller becomes the owner of the
// returned handles and is responsible for closing them. If the peer sent more
// than maxHandles handles, ReceiveHandles fails with [ErrTooManyHandles]. In
// case of errors, all file descriptors received so far get closed.
func (c *Conn) ReceiveHandles(maxHandles int) (hs []*netnspin.Handle, err error) {
	buff := make([]byte, maxManifestSize)
	n, fds, flags, err := c.ReceiveWithFds(buff, max(maxHandles, 1))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err == nil {
			return
		}
		for _, fd := range fds {
			_ = unix.Close(fd)
		}
		for _, h := range hs {
			_ = h.Close()
		}
		hs = nil
	}()
	if flags&unix.MSG_CTRUNC != 0 || len(fds) > maxHandles {
		return nil, fmt.Errorf("%w: accepting at most %d", ErrTooManyHandles, maxHandles)
	}
	if n == 0 {
		return nil, errors.New("connection closed by peer")
	}
	var m manifest
	if err := gob.NewDecoder(bytes.NewReader(buff[:n])).Decode(&m); err != nil {
		return nil, fmt.Errorf("cannot decode handle manifest, reason: %w", err)
	}
	if len(m.Handles) > maxHandles {
		return nil, fmt.Errorf("%w: accepting at most %d", ErrTooManyHandles, maxHandles)
	}
	if len(m.Handles) != len(fds) {
		return nil, fmt.Errorf("manifest lists %d handles, but got %d file descriptors",
			len(m.Handles), len(fds))
	}
	hs = make([]*netnspin.Handle, 0, len(fds))
	for len(fds) > 0 {
		info := m.Handles[len(hs)]
		fd := fds[0]
		fds = fds[1:] // FromFd always takes ownership
		h, err := netnspin.FromFd(fd, info.Name, info.Path)
		if err != nil {
			return hs, err
		}
		hs = append(hs, h)
	}
	return hs, nil
}
