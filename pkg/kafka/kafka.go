package kafka

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/Astemirdum/digital-library/pkg/circuit_breaker"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

const BorrowTopic = "library.borrow-events"

type Config struct {
	Enable bool     `yaml:"enable" envconfig:"KAFKA_ENABLE" default:"false"`
	Addrs  []string `yaml:"addrs" envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
	Topic  string   `yaml:"topic" envconfig:"KAFKA_TOPIC" default:"library.borrow-events"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Timeout = 5 * time.Second

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

type EventType string

const (
	EventBorrowed EventType = "BORROWED"
	EventReturned EventType = "RETURNED"
)

type BorrowEvent struct {
	Type       EventType `json:"type"`
	RecordID   int       `json:"record_id"`
	UserID     int       `json:"user_id"`
	BookID     int       `json:"book_id"`
	FineAmount float64   `json:"fine_amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(event BorrowEvent) error
	Close() error
}

type publisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
}

// NewPublisher sends events keyed by book id through the circuit breaker.
func NewPublisher(producer sarama.SyncProducer, topic string, cb circuit_breaker.CircuitBreaker) Publisher {
	return &publisher{
		producer: producer,
		topic:    topic,
		cb:       cb,
	}
}

func (p *publisher) Publish(event BorrowEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "json.Marshal")
	}
	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.keyString()),
		Value:     sarama.ByteEncoder(data),
		Timestamp: event.OccurredAt,
	}
	return p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
}

func (p *publisher) Close() error {
	return p.producer.Close()
}

func (e BorrowEvent) keyString() string {
	return strconv.Itoa(e.BookID)
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(BorrowEvent) error { return nil }
func (noopPublisher) Close() error              { return nil }
