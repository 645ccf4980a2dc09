// Package shutdown coordinates graceful termination of the pixmesh server.
//
// Hooks registered with OnShutdown run in reverse registration order once
// SIGINT or SIGTERM arrives or the parent context is cancelled, all sharing a
// single deadline. The server registers the HTTP listener first and the
// snapshot flush after it, so the final board is written once no more
// writes can land.
//
//	h := shutdown.NewHandler(15 * time.Second)
//	h.OnShutdown("snapshot", svc.Flush)
//	err := h.Wait(ctx)
package shutdown
