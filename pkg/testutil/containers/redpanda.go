//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// RedpandaContainer is a Kafka-compatible broker for the event stream tests.
type RedpandaContainer struct {
	Container testcontainers.Container
	Brokers   []string
	Client    *kgo.Client
	Admin     *kadm.Client
}

func startRedpanda(ctx context.Context, t *testing.T) *RedpandaContainer {
	t.Helper()

	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.2.4",
		redpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		t.Fatalf("start redpanda container: %v", err)
	}
	broker, err := container.KafkaSeedBroker(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("redpanda seed broker: %v", err)
	}
	client, err := kgo.NewClient(kgo.SeedBrokers(broker))
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("kafka client: %v", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("ping redpanda: %v", err)
	}
	return &RedpandaContainer{
		Container: container,
		Brokers:   []string{broker},
		Client:    client,
		Admin:     kadm.NewClient(client),
	}
}

// Consumer returns a client reading topics from the start.
func (r *RedpandaContainer) Consumer(t *testing.T, topics ...string) *kgo.Client {
	t.Helper()
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(r.Brokers...),
		kgo.ConsumeTopics(topics...),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		t.Fatalf("kafka consumer: %v", err)
	}
	t.Cleanup(cl.Close)
	return cl
}
