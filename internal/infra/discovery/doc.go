// Package discovery advertises a pixmesh server on the local network with
// multicast DNS and lets clients find servers the same way.
//
// Servers announce the _pixmesh._tcp service with TXT records carrying the
// canvas dimensions and version, so a browser can tell boards apart before
// connecting.
package discovery
