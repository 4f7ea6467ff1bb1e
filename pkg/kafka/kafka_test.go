package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Astemirdum/digital-library/pkg/circuit_breaker"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	at := time.Date(2025, time.March, 21, 10, 0, 0, 0, time.UTC)
	event := BorrowEvent{
		Type:       EventReturned,
		RecordID:   11,
		UserID:     7,
		BookID:     3,
		FineAmount: 6,
		OccurredAt: at,
	}

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, BorrowTopic, msg.Topic)
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		require.Equal(t, "3", string(key))

		raw, err := msg.Value.Encode()
		require.NoError(t, err)
		var got BorrowEvent
		require.NoError(t, json.Unmarshal(raw, &got))
		require.Equal(t, event, got)
		return nil
	})

	p := NewPublisher(producer, BorrowTopic, circuit_breaker.New(10, time.Minute, 0.5, 1))
	require.NoError(t, p.Publish(event))
	require.NoError(t, p.Close())
}

func TestPublisher_OpenBreaker(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisher(producer, BorrowTopic, circuit_breaker.New(1, time.Minute, 0.5, 1))
	require.ErrorIs(t, p.Publish(BorrowEvent{Type: EventBorrowed, BookID: 1}), sarama.ErrOutOfBrokers)
	// the failed call trips the breaker, the broker is not asked again
	require.ErrorIs(t, p.Publish(BorrowEvent{Type: EventBorrowed, BookID: 1}), circuit_breaker.ErrOpenCB)
	require.NoError(t, p.Close())
}
