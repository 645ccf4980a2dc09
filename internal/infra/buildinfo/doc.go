// Package buildinfo exposes version information injected at link time.
//
//	go build -ldflags "-X github.com/yndnr/pixmesh-go/internal/infra/buildinfo.Version=v1.0.0"
//
// GoVersion defaults to the toolchain recorded by the runtime.
package buildinfo
