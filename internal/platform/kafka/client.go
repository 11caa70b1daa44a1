// Package kafka builds the franz-go client used to stream records.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"bizhealth/internal/platform/config"
)

// Client owns a producer and an admin client on the same connection pool.
type Client struct {
	*kgo.Client
	Admin *kadm.Client
}

// New connects to the configured brokers. Returns nil when no brokers are
// configured.
func New(ctx context.Context, cfg config.KafkaConfig) (*Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID("bizhealth"),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchMaxBytes(4<<20),
		kgo.RecordDeliveryTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := cl.Ping(ctx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	return &Client{Client: cl, Admin: kadm.NewClient(cl)}, nil
}

// Health checks broker reachability.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx)
}
