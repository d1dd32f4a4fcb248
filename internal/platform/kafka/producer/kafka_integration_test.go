//go:build integration

package producer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hcen/internal/platform/kafka/consumer"
	"hcen/internal/platform/kafka/producer"
	"hcen/pkg/testutil"
	"hcen/pkg/testutil/containers"
)

// collector records every message it receives.
type collector struct {
	mu       sync.Mutex
	messages []*consumer.Message
}

func (c *collector) Handle(_ context.Context, msg *consumer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

func (c *collector) snapshot() []*consumer.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*consumer.Message(nil), c.messages...)
}

type KafkaSuite struct {
	suite.Suite
	ctx      context.Context
	brokers  []string
	producer *producer.Producer
}

func (s *KafkaSuite) SetupSuite() {
	s.ctx = context.Background()
	redpanda := containers.NewRedpandaContainer(s.T())
	s.brokers = redpanda.Brokers

	p, err := producer.New(s.brokers, testutil.DiscardLogger())
	s.Require().NoError(err)
	s.T().Cleanup(p.Close)
	s.producer = p
}

func TestKafkaSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaSuite))
}

func (s *KafkaSuite) TestEnsureTopicsIsIdempotent() {
	s.Require().NoError(s.producer.EnsureTopics(s.ctx, 1, "hcen.test-topics"))
	s.Require().NoError(s.producer.EnsureTopics(s.ctx, 1, "hcen.test-topics"))
}

func (s *KafkaSuite) TestPublishRoundTrip() {
	const topic = "hcen.test-roundtrip"
	s.Require().NoError(s.producer.EnsureTopics(s.ctx, 1, topic))

	handler := &collector{}
	c, err := consumer.New(s.brokers, "hcen-test-group", []string{topic}, handler, testutil.DiscardLogger())
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	headers := map[string]string{"evento": "registro-usuario", "tenantId": "clinic-a"}
	s.Require().NoError(s.producer.Publish(s.ctx, topic, []byte("19998888"), []byte(`{"cedula":"19998888"}`), headers))

	s.Eventually(func() bool { return len(handler.snapshot()) == 1 }, 30*time.Second, 100*time.Millisecond)

	msg := handler.snapshot()[0]
	s.Equal(topic, msg.Topic)
	s.Equal([]byte("19998888"), msg.Key)
	s.JSONEq(`{"cedula":"19998888"}`, string(msg.Value))
	s.Equal("registro-usuario", msg.Headers["evento"])
	s.Equal("clinic-a", msg.Headers["tenantId"])

	cancel()
	s.Require().ErrorIs(<-done, context.Canceled)
}
