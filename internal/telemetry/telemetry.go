// Package telemetry mirrors processed frames to an MQTT broker. It is
// an optional sink: a nil or disabled Publisher is simply never
// called by the driver.
package telemetry

import (
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tracktum/go-attitude/internal/linalg"
	"github.com/tracktum/go-attitude/internal/record"
)

// Publisher mirrors frames to a single MQTT topic as a whitespace
// separated list of 36 floats, the same payload shape as the record
// sink's log lines.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// Dial connects to broker with the given client ID and returns a
// Publisher bound to topic. The caller must call Close when done.
func Dial(broker, clientID, topic string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: mqtt connect: %w", token.Error())
	}

	return &Publisher{client: client, topic: topic}, nil
}

// Publish mirrors one frame. Publish errors are returned but are not
// fatal to the caller's processing loop; a dropped telemetry sample
// does not affect the estimators or the record sink.
func (p *Publisher) Publish(f record.Frame) error {
	var b strings.Builder
	for _, m := range [4]linalg.Mat3{f.AccMag, f.GyroOnly, f.QESKF, f.VEKFPair} {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				fmt.Fprintf(&b, "%g ", m.At(i, j))
			}
		}
	}
	payload := strings.TrimRight(b.String(), " ")

	token := p.client.Publish(p.topic, 0, false, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
