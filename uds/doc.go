/*
Package uds transfers [netnspin.Handle]s across process boundaries using
peer-to-peer pairs of (stream) unix domain sockets.

The network namespace file descriptors travel as SCM_RIGHTS ancillary data,
while a small gob-encoded manifest carries the names and paths of the handles.
The receiving side validates that each file descriptor references a network
namespace before handing out new handles. The receiving process thus can
attach to network namespaces it otherwise couldn't even reach through the
file system, such as when living in a different mount namespace.

Using stream unix domain sockets has the benefit of being able to detect when
the “other” side has disconnected.

# Trivia

“[UDS]” is short for “unix domain socket”.

[UDS]: https://en.wikipedia.org/wiki/Unix_domain_socket
*/
package uds
