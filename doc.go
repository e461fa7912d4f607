/*
Package netnspin creates, finds, enters, and removes named Linux network
namespaces, and runs functions inside a particular network namespace without
ever letting the network namespace switch leak into unrelated go routines.

# Named Network Namespaces

A [Store] manages network namespaces that are “pinned” by bind-mounting them
into a directory, by default [DefaultDirectory], the same directory “ip netns”
uses. Such named network namespaces survive their creator and can be found
again by their names.

	store := netnspin.New()
	h, err := store.Create("blue")
	if err != nil {
	    // ...
	}
	defer h.Close()
	// ...
	_ = store.Remove("blue")

Names are plain file names; creating a name that already exists fails with
[ErrAlreadyExists], and of multiple concurrent creators of the same name only
one wins.

# Running Code Inside Network Namespaces

Linux attaches namespaces to individual OS-level threads, whereas the Go
runtime happily schedules go routines onto any of its OS-level threads. [RunIn]
and [Handle.Do] thus lock the calling go routine to its OS-level thread,
switch the thread into the target network namespace, run the passed function,
and finally switch the thread back into its original network namespace – even
if the function fails or panics.

	addrs, err := netnspin.RunIn(h, func() ([]net.Addr, error) {
	    return net.InterfaceAddrs()
	})

Keep in mind that go routines started from inside such a function do not run
in the target network namespace.

# Anonymous Network Namespaces

[NewTransient] creates a network namespace that is only referenced by the
returned [Handle] and vanishes after the handle has been closed (unless
something else references it). [Current] returns a handle for the network
namespace the calling OS-level thread is currently attached to. [OpenPath]
and [FromFd] adopt network namespaces referenced by VFS paths and open file
descriptors, such as those received from other processes using
[github.com/thediveo/netnspin/uds].

# Privileges

Creating, entering, and bind-mounting network namespaces requires
CAP_SYS_ADMIN. Non-Linux platforms are not supported: all operations then fail
with [ErrUnsupportedPlatform].
*/
package netnspin
