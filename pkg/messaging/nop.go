package messaging

import (
	"context"
)

// NopBroker drops every message. Used when no broker is configured.
type NopBroker struct{}

func NewNopBroker() Broker {
	return NopBroker{}
}

func (NopBroker) Publish(context.Context, string, interface{}) error {
	return nil
}

func (NopBroker) Subscribe(ctx context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (NopBroker) Close() error {
	return nil
}
