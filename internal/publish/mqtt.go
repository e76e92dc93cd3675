package publish

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"stuhfl_go/internal/config"
	"stuhfl_go/internal/daemon"
)

const publishTimeout = 2 * time.Second

type Config struct {
	Host      string
	Port      int
	Topic     string
	ClientID  string
	FirstOnly bool
}

func FromConfig(cfg config.Config) Config {
	return Config{
		Host:      cfg.MQTTHost,
		Port:      cfg.MQTTPort,
		Topic:     cfg.MQTTTopic,
		ClientID:  cfg.MQTTClientID,
		FirstOnly: cfg.MQTTFirstOnly,
	}
}

// client is the part of paho.Client the publisher uses.
type client interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher sends tag events to an MQTT broker. Without a host it is a
// no-op.
type Publisher struct {
	client    client
	topic     string
	firstOnly bool

	sent   atomic.Uint64
	failed atomic.Uint64
}

func New(cfg Config) *Publisher {
	p := &Publisher{
		topic:     strings.TrimRight(strings.TrimSpace(cfg.Topic), "/"),
		firstOnly: cfg.FirstOnly,
	}
	if p.topic == "" {
		p.topic = "stuhfl/tags"
	}
	if strings.TrimSpace(cfg.Host) == "" {
		log.Printf("[mqtt] disabled (no host configured)")
		return p
	}
	if cfg.Port <= 0 {
		cfg.Port = 1883
	}

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetKeepAlive(60 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("[mqtt] connection lost: %v", err)
		}).
		SetOnConnectHandler(func(paho.Client) {
			log.Printf("[mqtt] connected to %s:%d", cfg.Host, cfg.Port)
		})
	p.client = paho.NewClient(opts)
	return p
}

func (p *Publisher) Enabled() bool {
	return p.client != nil
}

// Connect starts the broker session. With connect retry enabled the token
// completes once the first attempt is queued.
func (p *Publisher) Connect() error {
	if p.client == nil {
		return nil
	}
	token := p.client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil
	}
	return errors.Wrap(token.Error(), "mqtt connect")
}

func (p *Publisher) Close() {
	if p.client == nil {
		return
	}
	p.client.Disconnect(250)
}

// PublishTag sends one event to <topic>/<epc>.
func (p *Publisher) PublishTag(ev daemon.TagEvent) error {
	if p.client == nil || (p.firstOnly && !ev.First) {
		return nil
	}
	return p.publish(p.topic+"/"+strings.ReplaceAll(ev.EPC, ":", ""), false, ev)
}

// PublishStatus sends a retained status snapshot to <topic>/status.
func (p *Publisher) PublishStatus(st daemon.Status) error {
	if p.client == nil {
		return nil
	}
	return p.publish(p.topic+"/status", true, st)
}

// HandleTag adapts PublishTag to daemon.TagHandler and logs failures.
func (p *Publisher) HandleTag(ev daemon.TagEvent) {
	if err := p.PublishTag(ev); err != nil {
		log.Printf("[mqtt] publish %s failed: %v", ev.EPC, err)
	}
}

func (p *Publisher) Counts() (sent, failed uint64) {
	return p.sent.Load(), p.failed.Load()
}

func (p *Publisher) publish(topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode payload")
	}
	token := p.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		p.failed.Add(1)
		return errors.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		p.failed.Add(1)
		return errors.Wrapf(err, "publish %s", topic)
	}
	p.sent.Add(1)
	return nil
}
