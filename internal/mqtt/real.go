package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// Options configures a RealClient.
type Options struct {
	Broker     string
	ClientID   string
	Username   string
	Password   string
	Device     Device
	Properties []Property
	// BufferSize bounds the messages kept while disconnected.
	BufferSize int
}

// RealClient connects the node to an actual MQTT broker.
// Emit never blocks the caller; delivery runs on paho's goroutines.
type RealClient struct {
	client paho.Client
	opts   Options
	log    logrus.FieldLogger

	events chan Event
	done   chan struct{}

	outbox *outbox
}

// NewRealClient creates the client and starts connecting in the background.
// The connection is retried until it succeeds, so the device keeps running
// (and the watchdog keeps counting) while the broker is unreachable.
func NewRealClient(opts Options, log logrus.FieldLogger) (*RealClient, error) {
	c := newClient(opts, log)
	if opts.Broker == "" {
		c.log.Warn("no broker configured, running offline")
		return c, nil
	}

	will := StateMessage(opts.Device, StateLost)
	po := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(will.Topic, will.Payload, will.QoS, will.Retained).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			c.outbox.shut()
			c.log.Warnf("connection lost: %v", err)
		})

	c.client = paho.NewClient(po)
	token := c.client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			c.log.Errorf("connect to broker: %v", err)
		}
	}()

	return c, nil
}

func newClient(opts Options, log logrus.FieldLogger) *RealClient {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.ClientID == "" {
		opts.ClientID = opts.Device.ID
	}
	c := &RealClient{
		opts:   opts,
		log:    log.WithField("component", "mqtt"),
		events: make(chan Event, 32),
		done:   make(chan struct{}),
	}
	c.outbox = newOutbox(opts.BufferSize, c.log)
	return c
}

// onConnect advertises the device, subscribes to commands, replays anything
// held while offline and then tells the control loop. Property values keep
// queueing until the replay is done, so a newer value is never overtaken by
// an older held one.
func (c *RealClient) onConnect(client paho.Client) {
	c.log.Infof("connected to %s", c.opts.Broker)
	d := c.opts.Device

	c.send(StateMessage(d, StateInit))
	for _, msg := range Advertisement(d, c.opts.Properties) {
		c.send(msg)
	}

	token := client.Subscribe(d.SetFilter(), 1, c.onMessage)
	if !token.WaitTimeout(5 * time.Second) {
		c.log.Warn("subscribe timeout")
	} else if err := token.Error(); err != nil {
		c.log.Errorf("subscribe %s: %v", d.SetFilter(), err)
	}

	replayed := 0
	for batch := c.outbox.take(); batch != nil; batch = c.outbox.take() {
		for _, msg := range batch {
			c.send(msg)
		}
		replayed += len(batch)
	}
	if replayed > 0 {
		c.log.Infof("replayed %d held messages", replayed)
	}

	c.send(StateMessage(d, StateReady))
	c.deliver(Event{Type: EventConnected})
}

func (c *RealClient) onMessage(_ paho.Client, msg paho.Message) {
	property, ok := c.opts.Device.ParseSetTopic(msg.Topic())
	if !ok {
		c.log.Debugf("ignoring message on %s", msg.Topic())
		return
	}
	c.deliver(Event{Type: EventPropertySet, Property: property, Value: string(msg.Payload())})
}

// deliver hands an event to the control loop. It gives up once the client is closed.
func (c *RealClient) deliver(e Event) {
	select {
	case c.events <- e:
	case <-c.done:
	}
}

// Events returns the channel the control loop reads commands and connection
// notifications from.
func (c *RealClient) Events() <-chan Event {
	return c.events
}

// Emit publishes a property value. While disconnected, or while a new
// connection is still being set up, the value is held and replayed in order.
func (c *RealClient) Emit(property, value string) {
	c.publish(ValueMessage(c.opts.Device, property, value))
}

// PublishStats reports uptime on $stats.
func (c *RealClient) PublishStats(uptime, interval time.Duration) {
	if !c.IsConnected() {
		return
	}
	for _, msg := range StatsMessages(c.opts.Device, uptime, interval) {
		c.send(msg)
	}
}

// IsConfigured reports whether a broker has been configured.
func (c *RealClient) IsConfigured() bool {
	return c.client != nil
}

// IsConnected reports whether the broker connection is up.
func (c *RealClient) IsConnected() bool {
	return c.client != nil && c.client.IsConnectionOpen()
}

func (c *RealClient) publish(msg Message) {
	if !c.IsConnected() {
		c.outbox.shut()
	}
	if c.outbox.hold(msg) {
		return
	}
	c.send(msg)
}

// send publishes without waiting; failures are only logged.
func (c *RealClient) send(msg Message) {
	if c.client == nil {
		return
	}
	token := c.client.Publish(msg.Topic, msg.QoS, msg.Retained, msg.Payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			c.log.Warnf("publish %s: timeout", msg.Topic)
			return
		}
		if err := token.Error(); err != nil {
			c.log.Warnf("publish %s: %v", msg.Topic, err)
		}
	}()
}

// Close publishes $state disconnected and disconnects from the broker.
func (c *RealClient) Close() error {
	select {
	case <-c.done:
		return nil
	default:
		close(c.done)
	}
	if c.client == nil {
		return nil
	}
	if c.client.IsConnectionOpen() {
		msg := StateMessage(c.opts.Device, StateDisconnected)
		token := c.client.Publish(msg.Topic, msg.QoS, msg.Retained, msg.Payload)
		if !token.WaitTimeout(time.Second) {
			c.log.Warn("publish disconnected state: timeout")
		} else if err := token.Error(); err != nil {
			c.log.Warnf("publish disconnected state: %v", err)
		}
	}
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}

// String describes the connection for logs.
func (c *RealClient) String() string {
	return fmt.Sprintf("mqtt %s as %s", c.opts.Broker, c.opts.ClientID)
}
