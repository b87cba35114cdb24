package mcpserver

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/syre-project/engine/pkg/publisher"
	"github.com/syre-project/engine/pkg/state"
)

// UpdatePayload is one Update flattened for JSON notification delivery —
// state.Update's ResourceID has a MarshalText method but its Kind is a
// bare int, so it gets a readable name here the same way every other
// wire-facing struct in this package flattens an internal type.
type UpdatePayload struct {
	Kind         string `json:"kind"`
	ProjectPath  string `json:"projectPath,omitempty"`
	AbsGraphPath string `json:"absGraphPath,omitempty"`
	ResourceID   string `json:"resourceId,omitempty"`
}

const updateNotificationMethod = "notifications/syre/update"

// Notifier forwards publisher frames to every connected MCP client as
// server-to-client notifications, one per topic per batch — the MCP
// transport's counterpart to a Subscribe call. Topic subscriptions are
// set up once for the two app-level topics and the unknown-project
// topic at Start, and lazily for "project/{id}" topics the first time a
// tool handler resolves that project's id, since project ids don't
// exist until a project's graph root has loaded.
type Notifier struct {
	server *server.MCPServer
	pub    *publisher.Publisher

	mu       sync.Mutex
	watching map[string]func()
}

// NewNotifier builds a Notifier bound to s and pub. Call Start once the
// server is constructed.
func NewNotifier(s *server.MCPServer, pub *publisher.Publisher) *Notifier {
	return &Notifier{server: s, pub: pub, watching: make(map[string]func())}
}

// Start subscribes to the app-level topics and returns; the forwarding
// goroutines it starts run until ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	n.ensureTopic(ctx, publisher.TopicUserManifest)
	n.ensureTopic(ctx, publisher.TopicProjectManifest)
	n.ensureTopic(ctx, publisher.TopicUnknownProject)
	go func() {
		<-ctx.Done()
		n.mu.Lock()
		defer n.mu.Unlock()
		for _, cancel := range n.watching {
			cancel()
		}
	}()
}

// EnsureProjectTopic subscribes to a project's update topic the first
// time its resource id becomes known to a caller (the query tool
// handler). Subsequent calls for the same id are no-ops.
func (n *Notifier) EnsureProjectTopic(ctx context.Context, id state.ResourceId) {
	n.ensureTopic(ctx, "project/"+id.String())
}

func (n *Notifier) ensureTopic(ctx context.Context, topic string) {
	n.mu.Lock()
	if _, ok := n.watching[topic]; ok {
		n.mu.Unlock()
		return
	}
	frames, cancel := n.pub.Subscribe(topic)
	n.watching[topic] = cancel
	n.mu.Unlock()

	go n.forward(ctx, topic, frames)
}

func (n *Notifier) forward(ctx context.Context, topic string, frames <-chan publisher.Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			n.send(frame)
		}
	}
}

func (n *Notifier) send(frame publisher.Frame) {
	updates := make([]UpdatePayload, 0, len(frame.Updates))
	for _, u := range frame.Updates {
		updates = append(updates, UpdatePayload{
			Kind:         u.Kind.String(),
			ProjectPath:  u.ProjectPath,
			AbsGraphPath: u.AbsGraphPath,
			ResourceID:   u.ResourceID.String(),
		})
	}

	params := map[string]any{
		"topic":   frame.Topic,
		"batchId": frame.BatchID,
		"updates": updates,
	}
	n.server.SendNotificationToAllClients(updateNotificationMethod, params)
}
