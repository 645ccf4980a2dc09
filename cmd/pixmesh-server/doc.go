// Command pixmesh-server serves a shared pixel canvas over HTTP.
//
// Configuration is read from an optional YAML file, then PIXMESH_
// environment variables, then command-line flags:
//
//	pixmesh-server -config pixmesh.yaml -port 8000 -width 200 -height 100 -cooldown 5
//
// The canvas is saved after every accepted write and once more on
// shutdown.
package main
