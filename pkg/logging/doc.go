// Package logging provides structured, leveled logging for the DevOps Test
// MCP server, built on Go's standard slog package.
//
// Every log entry carries a subsystem identifier so that token-lifecycle
// events (exchange attempted, exchange succeeded/failed, fallback engaged)
// can be filtered from the rest of the server's output:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("Auth", "Exchanged offline token (expires_in=%d)", expiresIn)
//	logging.Error("Gateway", err, "Request to %s failed", url)
//
// Output must never go to stdout: the MCP stdio transport uses stdout for
// protocol frames, so all diagnostics are written to stderr by convention.
//
// Subsystems in use: Bootstrap, Config, Auth, Gateway, TestHub, Server.
package logging
