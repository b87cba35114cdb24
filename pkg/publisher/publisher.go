// Package publisher partitions reducer effect logs by topic and fans
// each topic out to its own subscribers — the teacher has no
// publish/subscribe pattern of its own (it's a single-process CLI), so
// this follows jra3-linear-fuse/internal/fs's shape instead: invalidate
// only the subtree a change actually touched, not every listener.
package publisher

import (
	"log"
	"sync"

	"github.com/syre-project/engine/pkg/state"
)

const (
	// TopicUserManifest and TopicProjectManifest are the two app-level
	// topics; every other topic is "project/" + id or "project/unknown".
	TopicUserManifest    = "app/user_manifest"
	TopicProjectManifest = "app/project_manifest"
	// TopicUnknownProject is used for project-scoped updates whose
	// project hasn't loaded far enough to have a resource id yet.
	TopicUnknownProject = "project/unknown"

	// subscriberBufferSize bounds how many frames a slow subscriber may
	// lag behind before Publish starts dropping frames for it rather
	// than blocking the supervisor's single writer goroutine.
	subscriberBufferSize = 64
)

// Frame is one published payload: every Update of one Publish call (all
// the TryReduce calls of one supervisor batch) that routed to the same
// topic, in reducer order.
type Frame struct {
	Topic   string
	Updates []state.Update
	BatchID uint64
}

// ProjectIdentityResolver answers "what resource id does this project
// path publish under right now" — state.AppState.ProjectResourceID
// satisfies this.
type ProjectIdentityResolver interface {
	ProjectResourceID(path string) (state.ResourceId, bool)
}

// Publisher is the update fan-out hub: one Publish call per reducer
// batch, any number of per-topic Subscribe calls. Safe for concurrent
// use; Publish is expected to be called only by the supervisor, but
// Subscribe/unsubscribe may happen from any goroutine.
type Publisher struct {
	resolver ProjectIdentityResolver

	mu   sync.Mutex
	subs map[string]map[int]chan Frame
	next int
}

// New returns a Publisher that resolves project-scoped update topics
// through resolver.
func New(resolver ProjectIdentityResolver) *Publisher {
	return &Publisher{
		resolver: resolver,
		subs:     make(map[string]map[int]chan Frame),
	}
}

// Subscribe registers a new listener on topic and returns a channel of
// frames plus a cancel function that unregisters it. The returned
// channel is never closed by Publish; callers cancel to stop receiving
// and let it be garbage collected.
func (p *Publisher) Subscribe(topic string) (<-chan Frame, func()) {
	ch := make(chan Frame, subscriberBufferSize)

	p.mu.Lock()
	if p.subs[topic] == nil {
		p.subs[topic] = make(map[int]chan Frame)
	}
	id := p.next
	p.next++
	p.subs[topic][id] = ch
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		delete(p.subs[topic], id)
		if len(p.subs[topic]) == 0 {
			delete(p.subs, topic)
		}
		p.mu.Unlock()
	}
	return ch, cancel
}

// Publish partitions log by topic and delivers one Frame per topic to
// every current subscriber of that topic. Ordering within a topic
// mirrors reducer order; there is no ordering guarantee across topics.
// A subscriber whose buffer is full is skipped for this frame rather
// than blocking the caller — backpressure here would stall the sole
// state writer for every topic, not just the slow one.
func (p *Publisher) Publish(batchID uint64, effects state.EffectLog) {
	if len(effects) == 0 {
		return
	}

	byTopic := make(map[string][]state.Update)
	var order []string
	for _, u := range effects {
		topic := p.topicFor(u)
		if _, seen := byTopic[topic]; !seen {
			order = append(order, topic)
		}
		byTopic[topic] = append(byTopic[topic], u)
	}

	for _, topic := range order {
		frame := Frame{Topic: topic, Updates: byTopic[topic], BatchID: batchID}

		p.mu.Lock()
		subs := make([]chan Frame, 0, len(p.subs[topic]))
		for _, ch := range p.subs[topic] {
			subs = append(subs, ch)
		}
		p.mu.Unlock()

		for _, ch := range subs {
			select {
			case ch <- frame:
			default:
				log.Printf("publisher: dropping frame for topic %s, subscriber buffer full", topic)
			}
		}
	}
}

func (p *Publisher) topicFor(u state.Update) string {
	switch u.Kind {
	case state.UpdateUserManifestChanged:
		return TopicUserManifest
	case state.UpdateProjectManifestChanged:
		return TopicProjectManifest
	}

	if u.ProjectPath == "" {
		return TopicUnknownProject
	}
	if id, ok := p.resolver.ProjectResourceID(u.ProjectPath); ok {
		return "project/" + id.String()
	}
	return TopicUnknownProject
}
