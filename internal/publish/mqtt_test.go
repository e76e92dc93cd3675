package publish

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"stuhfl_go/internal/daemon"
)

type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type message struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeClient struct {
	mu       sync.Mutex
	messages []message
	err      error
	closed   bool
}

func (c *fakeClient) Connect() paho.Token { return doneToken{} }
func (c *fakeClient) Disconnect(uint)     { c.closed = true }
func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message{topic, retained, payload.([]byte)})
	return doneToken{err: c.err}
}

func TestDisabledWithoutHost(t *testing.T) {
	p := New(Config{Topic: "x"})
	require.False(t, p.Enabled())
	require.NoError(t, p.Connect())
	require.NoError(t, p.PublishTag(daemon.TagEvent{EPC: "E2", First: true}))
	require.NoError(t, p.PublishStatus(daemon.Status{}))
	p.Close()
	sent, failed := p.Counts()
	require.Zero(t, sent)
	require.Zero(t, failed)
}

func TestPublishTagTopicAndFilter(t *testing.T) {
	fc := &fakeClient{}
	p := &Publisher{client: fc, topic: "site/dock", firstOnly: true}

	require.NoError(t, p.PublishTag(daemon.TagEvent{EPC: "E2:00:01", RSSI: -12, First: true}))
	require.NoError(t, p.PublishTag(daemon.TagEvent{EPC: "E2:00:01", First: false}))
	require.Len(t, fc.messages, 1)
	require.Equal(t, "site/dock/E20001", fc.messages[0].topic)
	require.False(t, fc.messages[0].retained)

	var ev daemon.TagEvent
	require.NoError(t, json.Unmarshal(fc.messages[0].payload, &ev))
	require.Equal(t, "E2:00:01", ev.EPC)
	require.Equal(t, -12, ev.RSSI)

	p.firstOnly = false
	require.NoError(t, p.PublishTag(daemon.TagEvent{EPC: "E2:00:01"}))
	require.Len(t, fc.messages, 2)
}

func TestPublishStatusIsRetained(t *testing.T) {
	fc := &fakeClient{}
	p := &Publisher{client: fc, topic: "stuhfl/tags"}
	require.NoError(t, p.PublishStatus(daemon.Status{Running: true, Rounds: 7}))
	require.Equal(t, "stuhfl/tags/status", fc.messages[0].topic)
	require.True(t, fc.messages[0].retained)
	require.Contains(t, string(fc.messages[0].payload), `"rounds":7`)
}

func TestPublishFailureIsCounted(t *testing.T) {
	fc := &fakeClient{err: errors.New("not connected")}
	p := &Publisher{client: fc, topic: "t"}
	p.HandleTag(daemon.TagEvent{EPC: "AA", First: true})
	err := p.PublishTag(daemon.TagEvent{EPC: "AA", First: true})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not connected")
	sent, failed := p.Counts()
	require.Zero(t, sent)
	require.Equal(t, uint64(2), failed)

	p.Close()
	require.True(t, fc.closed)
}

func TestFromConfigDefaultsTopic(t *testing.T) {
	p := New(Config{Topic: " /"})
	require.Equal(t, "stuhfl/tags", p.topic)
	p = New(Config{Topic: "a/b/"})
	require.Equal(t, "a/b", p.topic)
}
