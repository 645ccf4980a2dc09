// Package connection is the pixmesh-cli HTTP client.
//
// Canvas routes answer errors with a bare text body; the client turns them
// into *APIError values carrying the status, the message and, for
// cooldown rejections, the Retry-After delay.
package connection
