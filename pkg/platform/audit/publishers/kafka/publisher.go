// Package kafka streams finalized records to Kafka topics, one topic per
// record kind, keyed by run id so a run's records stay ordered within a
// partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "bizhealth/pkg/platform/audit"
	"bizhealth/pkg/platform/sentinel"
)

// Producer is the subset of *kgo.Client used for publishing.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher is an audit.Sink writing to Kafka.
type Publisher struct {
	producer Producer
	topics   map[audit.Kind]string
}

// Topics maps each record kind to its topic.
type Topics struct {
	QualityAudit  string
	AnomalyReport string
}

// DefaultTopics returns the standard topic names.
func DefaultTopics() Topics {
	return Topics{
		QualityAudit:  "bizhealth.quality-audits",
		AnomalyReport: "bizhealth.anomaly-reports",
	}
}

func (t Topics) names() []string {
	return []string{t.QualityAudit, t.AnomalyReport}
}

func New(producer Producer, topics Topics) *Publisher {
	return &Publisher{
		producer: producer,
		topics: map[audit.Kind]string{
			audit.KindQualityAudit:  topics.QualityAudit,
			audit.KindAnomalyReport: topics.AnomalyReport,
		},
	}
}

func (p *Publisher) Name() string { return "kafka" }

// Publish produces the event synchronously and waits for the broker ack.
func (p *Publisher) Publish(ctx context.Context, event audit.Event) error {
	topic, ok := p.topics[event.Kind]
	if !ok || topic == "" {
		return fmt.Errorf("no topic configured for %s", event.Kind)
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode kafka record: %w", err)
	}
	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(event.RunID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(event.Kind)},
			{Key: "status", Value: []byte(event.Status)},
			{Key: "event_id", Value: []byte(event.ID.String())},
		},
		Timestamp: event.Timestamp,
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w: %v", topic, sentinel.ErrUnavailable, err)
	}
	return nil
}

// EnsureTopics creates any missing topics. Topics that already exist are
// not an error.
func EnsureTopics(ctx context.Context, admin *kadm.Client, topics Topics, partitions int32, replication int16) error {
	resp, err := admin.CreateTopics(ctx, partitions, replication, nil, topics.names()...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	var errs []error
	for _, r := range resp.Sorted() {
		if r.Err != nil && !isTopicExists(r.Err) {
			errs = append(errs, fmt.Errorf("topic %s: %w", r.Topic, r.Err))
		}
	}
	return errors.Join(errs...)
}
