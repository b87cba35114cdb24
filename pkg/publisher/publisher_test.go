package publisher_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syre-project/engine/pkg/publisher"
	"github.com/syre-project/engine/pkg/state"
)

type fakeResolver struct {
	ids map[string]state.ResourceId
}

func (f fakeResolver) ProjectResourceID(path string) (state.ResourceId, bool) {
	id, ok := f.ids[path]
	return id, ok
}

func recv(t *testing.T, ch <-chan publisher.Frame) publisher.Frame {
	t.Helper()
	select {
	case f := <-ch:
		return f
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return publisher.Frame{}
	}
}

func TestPublishRoutesAppLevelTopics(t *testing.T) {
	p := publisher.New(fakeResolver{})
	userCh, cancelUser := p.Subscribe(publisher.TopicUserManifest)
	defer cancelUser()
	projCh, cancelProj := p.Subscribe(publisher.TopicProjectManifest)
	defer cancelProj()

	p.Publish(1, state.EffectLog{
		{Kind: state.UpdateUserManifestChanged},
		{Kind: state.UpdateProjectManifestChanged},
	})

	userFrame := recv(t, userCh)
	assert.Equal(t, publisher.TopicUserManifest, userFrame.Topic)
	require.Len(t, userFrame.Updates, 1)

	projFrame := recv(t, projCh)
	assert.Equal(t, publisher.TopicProjectManifest, projFrame.Topic)
	require.Len(t, projFrame.Updates, 1)
}

func TestPublishRoutesKnownProjectToItsResourceID(t *testing.T) {
	id := state.NewResourceId()
	p := publisher.New(fakeResolver{ids: map[string]state.ResourceId{"/proj": id}})
	ch, cancel := p.Subscribe("project/" + id.String())
	defer cancel()

	p.Publish(5, state.EffectLog{
		{Kind: state.UpdateProjectPropertiesChanged, ProjectPath: "/proj"},
	})

	frame := recv(t, ch)
	assert.Equal(t, "project/"+id.String(), frame.Topic)
	assert.Equal(t, uint64(5), frame.BatchID)
	require.Len(t, frame.Updates, 1)
	assert.Equal(t, state.UpdateProjectPropertiesChanged, frame.Updates[0].Kind)
}

func TestPublishRoutesUnresolvedProjectToUnknown(t *testing.T) {
	p := publisher.New(fakeResolver{})
	ch, cancel := p.Subscribe(publisher.TopicUnknownProject)
	defer cancel()

	p.Publish(1, state.EffectLog{
		{Kind: state.UpdateProjectInserted, ProjectPath: "/new-project"},
	})

	frame := recv(t, ch)
	assert.Equal(t, publisher.TopicUnknownProject, frame.Topic)
}

func TestPublishGroupsMultipleUpdatesInOneBatchIntoOneFrame(t *testing.T) {
	id := state.NewResourceId()
	p := publisher.New(fakeResolver{ids: map[string]state.ResourceId{"/proj": id}})
	ch, cancel := p.Subscribe("project/" + id.String())
	defer cancel()

	p.Publish(1, state.EffectLog{
		{Kind: state.UpdateProjectPropertiesChanged, ProjectPath: "/proj"},
		{Kind: state.UpdateProjectSettingsChanged, ProjectPath: "/proj"},
	})

	frame := recv(t, ch)
	require.Len(t, frame.Updates, 2)
	assert.Equal(t, state.UpdateProjectPropertiesChanged, frame.Updates[0].Kind)
	assert.Equal(t, state.UpdateProjectSettingsChanged, frame.Updates[1].Kind)
}

func TestPublishSkipsFullSubscriberWithoutBlocking(t *testing.T) {
	p := publisher.New(fakeResolver{})
	ch, cancel := p.Subscribe(publisher.TopicUserManifest)
	defer cancel()

	// Fill the subscriber's buffer, then publish one more: Publish must
	// return promptly rather than block on the full channel.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			p.Publish(uint64(i), state.EffectLog{{Kind: state.UpdateUserManifestChanged}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}
	<-ch // drain at least one frame to prove delivery still happened
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	p := publisher.New(fakeResolver{})
	ch, cancel := p.Subscribe(publisher.TopicUserManifest)
	cancel()

	p.Publish(1, state.EffectLog{{Kind: state.UpdateUserManifestChanged}})

	select {
	case <-ch:
		t.Fatal("received a frame after unsubscribing")
	case <-time.After(50 * time.Millisecond):
	}
}
