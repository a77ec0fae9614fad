package notify

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/1ndex13/logistic-app/core/events"
	"github.com/1ndex13/logistic-app/core/logger"
	"github.com/1ndex13/logistic-app/core/notify"
	infralogger "github.com/1ndex13/logistic-app/infra/logger"
)

// Config defines the connection parameters for the MQTT notifier.
type Config struct {
	Enabled    bool   `json:"enabled"`
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	TopicBase  string `json:"topic_base"`
	QoS        byte   `json:"qos"`
	UseTLS     bool   `json:"use_tls"`
	ClientCert string `json:"client_cert"`
	ClientKey  string `json:"client_key"`
	CABundle   string `json:"ca_bundle"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// MQTTNotifier publishes allocation and release notifications to warehouse
// topics so yard display boards and downstream systems can react.
type MQTTNotifier struct {
	cli       pahoClient
	topicBase string
	qos       byte
	log       logger.Logger
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewMQTTNotifier connects to the broker and returns a ready notifier.
func NewMQTTNotifier(cfg Config) (*MQTTNotifier, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := infralogger.New("mqtt-notifier")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected") }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) { log.Warnf("reconnecting to MQTT broker") }

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	base := cfg.TopicBase
	if base == "" {
		base = "fleet"
	}
	return &MQTTNotifier{cli: c, topicBase: base, qos: cfg.QoS, log: log}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.loadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

func (c Config) loadTLSConfig() (*tls.Config, error) {
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// NotifyAllocation implements notify.Notifier.
func (n *MQTTNotifier) NotifyAllocation(ev events.AllocationEvent) error {
	msg := struct {
		EventID     string  `json:"event_id"`
		VehicleID   string  `json:"vehicle_id"`
		WarehouseID string  `json:"warehouse_id"`
		VolumeM3    float64 `json:"volume_m3"`
		NewLoadM3   float64 `json:"new_load_m3"`
		Timestamp   int64   `json:"timestamp"`
	}{
		EventID:     uuid.NewString(),
		VehicleID:   ev.VehicleID,
		WarehouseID: ev.WarehouseID,
		VolumeM3:    ev.Volume,
		NewLoadM3:   ev.NewLoad,
		Timestamp:   ev.Time.UnixMilli(),
	}
	topic := fmt.Sprintf("%s/warehouse/%s/allocated", n.topicBase, ev.WarehouseID)
	return n.publish(topic, msg)
}

// NotifyRelease implements notify.Notifier.
func (n *MQTTNotifier) NotifyRelease(ev events.ReleaseEvent) error {
	msg := struct {
		EventID     string  `json:"event_id"`
		VehicleID   string  `json:"vehicle_id,omitempty"`
		WarehouseID string  `json:"warehouse_id"`
		VolumeM3    float64 `json:"volume_m3"`
		NewLoadM3   float64 `json:"new_load_m3"`
		Forced      bool    `json:"forced"`
		Timestamp   int64   `json:"timestamp"`
	}{
		EventID:     uuid.NewString(),
		VehicleID:   ev.VehicleID,
		WarehouseID: ev.WarehouseID,
		VolumeM3:    ev.Volume,
		NewLoadM3:   ev.NewLoad,
		Forced:      ev.Forced,
		Timestamp:   ev.Time.UnixMilli(),
	}
	topic := fmt.Sprintf("%s/warehouse/%s/released", n.topicBase, ev.WarehouseID)
	return n.publish(topic, msg)
}

func (n *MQTTNotifier) publish(topic string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	token := n.cli.Publish(topic, n.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	n.log.Debugf("published %s", topic)
	return nil
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	if n.cli != nil && n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}

var _ notify.Notifier = (*MQTTNotifier)(nil)
