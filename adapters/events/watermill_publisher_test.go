package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/require"
)

func TestPublishSubmitted(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(context.Background(), TopicSubmitted)
	require.NoError(t, err)

	publisher := NewWatermillPublisher(pubSub)
	require.NoError(t, publisher.PublishSubmitted(context.Background(), "ext-1"))

	msg := <-messages
	msg.Ack()

	require.Equal(t, "ext-1", msg.UUID)

	var event SubmittedEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &event))
	require.Equal(t, "ext-1", event.ExternalID)
}

func TestPublishStatus(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(context.Background(), TopicStatus)
	require.NoError(t, err)

	publisher := NewWatermillPublisher(pubSub)
	require.NoError(t, publisher.PublishStatus(context.Background(), "ext-1", "SUCCESSFUL"))

	msg := <-messages
	msg.Ack()

	var event StatusEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &event))
	require.Equal(t, "ext-1", event.ExternalID)
	require.Equal(t, "SUCCESSFUL", event.Status)
}
