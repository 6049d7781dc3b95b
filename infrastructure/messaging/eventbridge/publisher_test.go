package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"books-backend/domain/book"
	"books-backend/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEventBridge struct {
	calls  []*eventbridge.PutEventsInput
	output *eventbridge.PutEventsOutput
	err    error
}

func (f *fakeEventBridge) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	if f.output != nil {
		return f.output, nil
	}
	return &eventbridge.PutEventsOutput{}, nil
}

var now = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func TestPublisher_PublishEntry(t *testing.T) {
	client := &fakeEventBridge{}
	publisher := NewPublisher(client, "books-bus", "books.backend", zap.NewNop())

	b := book.Book{ID: "42", Author: "A", Name: "N", ReleaseDate: book.MustParseDate("2020-01-01")}
	require.NoError(t, publisher.Publish(context.Background(), events.NewBookCreated(b, now)))

	require.Len(t, client.calls, 1)
	require.Len(t, client.calls[0].Entries, 1)
	entry := client.calls[0].Entries[0]
	assert.Equal(t, "books-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, "books.backend", aws.ToString(entry.Source))
	assert.Equal(t, "BookCreated", aws.ToString(entry.DetailType))
	assert.Equal(t, now, aws.ToTime(entry.Time))

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "42", detail["aggregate_id"])
	assert.Equal(t, "2020-01-01", detail["book"].(map[string]interface{})["releaseDate"])
}

func TestPublisher_Batches(t *testing.T) {
	client := &fakeEventBridge{}
	publisher := NewPublisher(client, "bus", "src", zap.NewNop())

	var evts []events.DomainEvent
	for i := 0; i < 23; i++ {
		evts = append(evts, events.NewBookDeleted("id", now))
	}
	require.NoError(t, publisher.Publish(context.Background(), evts...))

	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0].Entries, 10)
	assert.Len(t, client.calls[2].Entries, 3)
}

func TestPublisher_Failures(t *testing.T) {
	t.Run("client error", func(t *testing.T) {
		client := &fakeEventBridge{err: errors.New("denied")}
		publisher := NewPublisher(client, "bus", "src", zap.NewNop())

		err := publisher.Publish(context.Background(), events.NewBookDeleted("1", now))
		assert.ErrorContains(t, err, "denied")
	})

	t.Run("failed entries", func(t *testing.T) {
		client := &fakeEventBridge{output: &eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}},
		}}
		publisher := NewPublisher(client, "bus", "src", zap.NewNop())

		err := publisher.Publish(context.Background(), events.NewBookDeleted("1", now))
		assert.EqualError(t, err, "1 events failed to publish")
	})

	t.Run("nothing to send", func(t *testing.T) {
		client := &fakeEventBridge{}
		publisher := NewPublisher(client, "bus", "src", zap.NewNop())

		assert.NoError(t, publisher.Publish(context.Background()))
		assert.Empty(t, client.calls)
	})
}
