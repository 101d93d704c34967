package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/stockwatch/internal/domain/models"
	"github.com/turtacn/stockwatch/internal/infrastructure/monitoring"
	"github.com/turtacn/stockwatch/pkg/constants"
	"github.com/turtacn/stockwatch/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	p := newKafkaPublisher(w, logger.NewNoopLogger(), metrics)

	event := models.NewEvent(constants.EventStockSaved, "abc123", "AAPL")
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("abc123"), w.msgs[0].Key)
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)

	var decoded models.Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, constants.EventStockSaved, decoded.Type)
	assert.Equal(t, "AAPL", decoded.Symbol)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("stock_saved", "ok")))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	p := newKafkaPublisher(w, logger.NewNoopLogger(), metrics)

	err := p.Publish(context.Background(), models.NewEvent(constants.EventUserLogin, "abc123", ""))
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("user_login", "error")))
}

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()
	require.NoError(t, p.Publish(context.Background(), models.NewEvent(constants.EventStockRemoved, "u", "MSFT")))
	assert.Len(t, p.Events(), 1)

	p.FailWith(errors.New("nope"))
	assert.Error(t, p.Publish(context.Background(), models.Event{}))
	assert.Len(t, p.Events(), 1)

	assert.NoError(t, NewNoopPublisher(logger.NewNoopLogger()).Publish(context.Background(), models.Event{}))
}
