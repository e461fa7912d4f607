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

package links

import (
	"slices"

	"github.com/jsimonetti/rtnetlink"
	"github.com/thediveo/netnspin"
	"golang.org/x/sys/unix"
)

// Link is a network interface as seen from inside a particular network
// namespace.
type Link struct {
	Index int
	Name  string
	Kind  string // such as "dummy", "veth", ...; empty for "lo"
	Up    bool
}

// List returns the network interfaces inside the network namespace referenced
// by h, sorted by their interface indices.
func List(h *netnspin.Handle) ([]Link, error) {
	return netnspin.RunIn(h, func() ([]Link, error) {
		// The RTNETLINK socket is bound to the network namespace of the
		// OS-level thread that creates it, so this must happen inside RunIn.
		conn, err := rtnetlink.Dial(nil)
		if err != nil {
			return nil, err
		}
		defer func() { _ = conn.Close() }()

		msgs, err := conn.Link.List()
		if err != nil {
			return nil, err
		}
		links := make([]Link, 0, len(msgs))
		for _, msg := range msgs {
			link := Link{
				Index: int(msg.Index),
				Up:    msg.Flags&unix.IFF_UP != 0,
			}
			if msg.Attributes != nil {
				link.Name = msg.Attributes.Name
				if msg.Attributes.Info != nil {
					link.Kind = msg.Attributes.Info.Kind
				}
			}
			links = append(links, link)
		}
		slices.SortFunc(links, func(a, b Link) int { return a.Index - b.Index })
		return links, nil
	})
}

// Names returns just the names of the network interfaces inside the network
// namespace referenced by h.
func Names(h *netnspin.Handle) ([]string, error) {
	links, err := List(h)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(links))
	for _, link := range links {
		names = append(names, link.Name)
	}
	return names, nil
}

// AddDummy creates a new network interface of kind “dummy” with the specified
// name inside the network namespace referenced by h.
func AddDummy(h *netnspin.Handle, name string) error {
	return h.Do(func() error {
		conn, err := rtnetlink.Dial(nil)
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close() }()

		return conn.Link.New(&rtnetlink.LinkMessage{
			Family: unix.AF_UNSPEC,
			Attributes: &rtnetlink.LinkAttributes{
				Name: name,
				Info: &rtnetlink.LinkInfo{Kind: "dummy"},
			},
		})
	})
}
