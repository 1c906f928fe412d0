//go:build integration

package outbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/web-lizzard/review-genie/internal/project/outbox"
	"github.com/web-lizzard/review-genie/internal/project/ports"
	"github.com/web-lizzard/review-genie/pkg/testutil/containers"
)

const topic = "review-genie.projects.test"

type KafkaPublisherSuite struct {
	suite.Suite
	broker *containers.RedpandaContainer
	client *kgo.Client
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T())
	client, err := kgo.NewClient(kgo.SeedBrokers(s.broker.Broker))
	s.Require().NoError(err)
	s.client = client

	ctx := context.Background()
	s.Require().NoError(outbox.EnsureTopic(ctx, client, topic, 1, 1))
	s.Require().NoError(outbox.EnsureTopic(ctx, client, topic, 1, 1), "second call must tolerate existing topic")
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *KafkaPublisherSuite) TestPublishedEventIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	msg := ports.OutboxMessage{
		ID:            uuid.New(),
		AggregateType: "project",
		AggregateID:   "github:acme:widgets",
		EventType:     "project.created",
		Payload:       []byte(`{"project_id":"github:acme:widgets"}`),
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
	s.Require().NoError(outbox.NewKafkaPublisher(s.client, topic).Publish(ctx, []ports.OutboxMessage{msg}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())

	var got *kgo.Record
	fetches.EachRecord(func(r *kgo.Record) {
		if string(r.Key) == msg.AggregateID {
			got = r
		}
	})
	s.Require().NotNil(got)
	s.JSONEq(string(msg.Payload), string(got.Value))
}
