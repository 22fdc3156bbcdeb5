package outbox

import (
	"context"
	"errors"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	batches map[string][]kafka.Message
	err     error
}

func (w *stubWriter) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	if w.batches == nil {
		w.batches = make(map[string][]kafka.Message)
	}
	w.batches[topic] = append(w.batches[topic], msgs...)
	return nil
}

func TestDeliverGroupsByTopicAndSetsHeaders(t *testing.T) {
	writer := &stubWriter{}
	d := &Dispatcher{producer: writer}

	messages := []Message{
		{EventID: 1, AggregateType: "workout", AggregateID: "w-1", EventType: "workout.logged", Topic: "workout_events", PartitionKey: "user-1", Payload: []byte(`{"workout_id":"w-1"}`)},
		{EventID: 2, AggregateType: "workout", AggregateID: "w-2", EventType: "workout.deleted", Topic: "workout_events", PartitionKey: "w-2", Payload: []byte(`{"workout_id":"w-2"}`)},
	}

	require.NoError(t, d.deliver(context.Background(), messages))
	require.Len(t, writer.batches, 1)

	batch := writer.batches["workout_events"]
	require.Len(t, batch, 2)
	require.Equal(t, []byte("user-1"), batch[0].Key)
	require.JSONEq(t, `{"workout_id":"w-1"}`, string(batch[0].Value))

	headers := make(map[string]string)
	for _, h := range batch[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, "workout.logged", headers["event_type"])
	require.Equal(t, "workout", headers["aggregate_type"])
	require.Equal(t, "w-1", headers["aggregate_id"])
}

func TestDeliverPropagatesWriterError(t *testing.T) {
	writer := &stubWriter{err: errors.New("broker unavailable")}
	d := &Dispatcher{producer: writer}

	err := d.deliver(context.Background(), []Message{
		{EventID: 1, Topic: "workout_events", Payload: []byte(`{}`)},
	})
	require.Error(t, err)
}

func TestDeliveredCounterRegistered(t *testing.T) {
	metric := &dto.Metric{}
	require.NoError(t, deliveredCounter.Write(metric))

	before := metric.GetCounter().GetValue()
	deliveredCounter.Add(3)

	require.NoError(t, deliveredCounter.Write(metric))
	require.Equal(t, before+3, metric.GetCounter().GetValue())
}
