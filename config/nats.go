package config

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// ConnectToNats returns nil, nil when NATS_URL is unset.
func ConnectToNats(cfg Config) (*nats.Conn, error) {
	if cfg.NatsURL == "" {
		return nil, nil
	}

	nc, err := nats.Connect(cfg.NatsURL,
		nats.Name("fintrack-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return nc, nil
}
