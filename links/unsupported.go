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

package links

import "github.com/thediveo/netnspin"

// Link is a network interface as seen from inside a particular network
// namespace.
type Link struct {
	Index int
	Name  string
	Kind  string
	Up    bool
}

var errUnsupported = &netnspin.Error{Op: "netlink", Kind: netnspin.ErrUnsupportedPlatform}

// List is not supported on this platform.
func List(h *netnspin.Handle) ([]Link, error) { return nil, errUnsupported }

// Names is not supported on this platform.
func Names(h *netnspin.Handle) ([]string, error) { return nil, errUnsupported }

// AddDummy is not supported on this platform.
func AddDummy(h *netnspin.Handle, name string) error { return errUnsupported }
