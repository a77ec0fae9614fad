package notify

import (
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1ndex13/logistic-app/core/events"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	connected  bool
	connectErr error
	publishErr error
	topics     []string
	payloads   [][]byte
}

func (c *fakeClient) IsConnected() bool { return c.connected }
func (c *fakeClient) Connect() paho.Token {
	if c.connectErr == nil {
		c.connected = true
	}
	return &fakeToken{err: c.connectErr}
}
func (c *fakeClient) Disconnect(uint) { c.connected = false }
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	return &fakeToken{err: c.publishErr}
}

func withFakeClient(t *testing.T, c *fakeClient) {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return c }
	t.Cleanup(func() { newMQTTClient = orig })
}

func TestNotifyAllocationPublishesToWarehouseTopic(t *testing.T) {
	cli := &fakeClient{}
	withFakeClient(t, cli)

	n, err := NewMQTTNotifier(Config{Broker: "tcp://localhost:1883", ClientID: "test", TopicBase: "yard"})
	require.NoError(t, err)

	err = n.NotifyAllocation(events.AllocationEvent{
		VehicleID:   "v1",
		WarehouseID: "w1",
		Volume:      30,
		NewLoad:     80,
		Time:        time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, cli.topics, 1)
	assert.Equal(t, "yard/warehouse/w1/allocated", cli.topics[0])

	var msg map[string]any
	require.NoError(t, json.Unmarshal(cli.payloads[0], &msg))
	assert.Equal(t, "v1", msg["vehicle_id"])
	assert.Equal(t, 30.0, msg["volume_m3"])
	assert.Equal(t, 80.0, msg["new_load_m3"])
	assert.NotEmpty(t, msg["event_id"])
}

func TestNotifyReleasePublishesToWarehouseTopic(t *testing.T) {
	cli := &fakeClient{}
	withFakeClient(t, cli)

	n, err := NewMQTTNotifier(Config{Broker: "tcp://localhost:1883", ClientID: "test"})
	require.NoError(t, err)

	err = n.NotifyRelease(events.ReleaseEvent{WarehouseID: "w1", Forced: true, Time: time.Now()})
	require.NoError(t, err)
	require.Len(t, cli.topics, 1)
	// Default topic base.
	assert.Equal(t, "fleet/warehouse/w1/released", cli.topics[0])

	var msg map[string]any
	require.NoError(t, json.Unmarshal(cli.payloads[0], &msg))
	assert.Equal(t, true, msg["forced"])
}

func TestNewMQTTNotifierConnectFailure(t *testing.T) {
	cli := &fakeClient{connectErr: assert.AnError}
	withFakeClient(t, cli)

	_, err := NewMQTTNotifier(Config{Broker: "tcp://localhost:1883"})
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	cli := &fakeClient{}
	withFakeClient(t, cli)

	n, err := NewMQTTNotifier(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	n.Close()
	assert.False(t, cli.connected)
}

func TestNewClientOptionsTLSRequiresFiles(t *testing.T) {
	_, err := NewClientOptions(Config{Broker: "ssl://localhost:8883", UseTLS: true})
	assert.Error(t, err)
}
