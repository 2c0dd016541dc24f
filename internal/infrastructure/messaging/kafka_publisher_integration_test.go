//go:build integration

package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/event"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/kafka"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/testutil"
)

func TestKafkaPublisher_Integration(t *testing.T) {
	ctx := context.Background()
	kc := testutil.StartKafka(t)

	producer, err := kafka.NewProducer(kafka.Config{Brokers: kc.Brokers, WriteTimeout: 10 * time.Second})
	require.NoError(t, err)
	defer producer.Close()

	const topic = "veera.incidents.it"
	pub := NewKafkaPublisher(producer, topic, discardLogger())

	incidentID := uuid.New()
	evt, err := event.NewIncidentRecorded(event.IncidentRecorded{IncidentID: incidentID, UserID: "u1", RiskLevel: "LOW"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return pub.Publish(ctx, evt) == nil
	}, 30*time.Second, time.Second, "topic auto-creation can take a few attempts")

	msgs := kc.ReadMessages(t, topic, 1)
	require.Len(t, msgs, 1)
	assert.Equal(t, incidentID.String(), string(msgs[0].Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(msgs[0].Value, &env))
	assert.Equal(t, event.EventTypeIncidentRecorded, env.EventType)
}
