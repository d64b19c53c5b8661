package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/tomislacker/photos3/internal/errs"
)

// KafkaConsumer adapts a kafka reader to the short-poll Consumer contract.
// Deleting a message commits its offset, but never past a message that was
// fetched and retained: the offset tracker holds commits back until the
// deletions are contiguous, so a retained message is redelivered after a
// restart or rebalance instead of being skipped by a later commit on the
// same partition.
type KafkaConsumer struct {
	reader  *kafka.Reader
	wait    time.Duration
	offsets *offsetTracker
}

func NewKafkaConsumer(broker, topic, group string, wait time.Duration) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{broker},
			Topic:   topic,
			GroupID: group,
		}),
		wait:    wait,
		offsets: newOffsetTracker(),
	}
}

func (c *KafkaConsumer) Receive(ctx context.Context) ([]Message, error) {
	const op = "queue.KafkaConsumer.Receive"

	fetchCtx, cancel := context.WithTimeout(ctx, c.wait)
	defer cancel()

	msg, err := c.reader.FetchMessage(fetchCtx)
	if err != nil {
		// The wait elapsing with nothing to read means the queue is empty,
		// not that something broke.
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, errs.Wrap(errs.KindTransport, op, ctx.Err())
		}
		return nil, errs.Wrap(errs.KindTransport, op, err)
	}

	c.offsets.Fetched(msg)

	return []Message{{
		ID:      fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset),
		Body:    msg.Value,
		Receipt: msg,
	}}, nil
}

func (c *KafkaConsumer) Delete(ctx context.Context, msg Message) error {
	const op = "queue.KafkaConsumer.Delete"

	km, ok := msg.Receipt.(kafka.Message)
	if !ok {
		return errs.New(errs.KindTransport, op, "message %s has no kafka receipt", msg.ID)
	}
	commit, releasable := c.offsets.Deleted(km)
	if !releasable {
		// An earlier message on this partition is retained. Committing now
		// would skip it, so the commit waits; this message just gets
		// redelivered alongside it.
		return nil
	}
	if err := c.reader.CommitMessages(ctx, commit); err != nil {
		return errs.Wrap(errs.KindTransport, op, err)
	}
	return nil
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

// KafkaPublisher writes bodies to a topic with uuid message keys.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(broker, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers: []string{broker},
			Topic:   topic,
		}),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, body []byte) error {
	const op = "queue.KafkaPublisher.Publish"

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(uuid.NewString()),
		Value: body,
	})
	if err != nil {
		return errs.Wrap(errs.KindTransport, op, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
