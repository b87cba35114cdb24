// Package mcpserver exposes the engine's client command surface —
// watch, unwatch, final_path, and the tagged-union query verb — as MCP
// tools, registered the way the teacher's pkg/mcp/register.go registers
// its tools. Unlike the teacher, which calls straight into its own
// packages, every handler here calls back into a *supervisor.Supervisor
// so MCP clients serialize behind the same single-writer event loop
// every other caller does.
package mcpserver

import (
	"github.com/syre-project/engine/pkg/publisher"
	"github.com/syre-project/engine/pkg/supervisor"
)

// Config bundles the dependencies MCP tool handlers and the update
// notifier need. Notifier may be nil, in which case tool handlers still
// work but no server-to-client update notifications are sent.
type Config struct {
	Supervisor *supervisor.Supervisor
	Publisher  *publisher.Publisher
	Notifier   *Notifier
}
