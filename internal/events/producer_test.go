package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer_Publish_Success(t *testing.T) {
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got Event
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Type != TypeCouponIssued || got.Key != "coupon-1" || got.UserID != "user-1" {
			return errors.New("unexpected payload: " + string(val))
		}
		return nil
	})

	p := NewProducerWithClient(mp, "eatsrun.events")
	ev := New(TypeCouponIssued, "coupon-1", "user-1", "event-1", time.Now(), map[string]any{"category": "CAFE"})

	err := p.Publish(context.Background(), ev)

	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestProducer_Publish_BrokerFailure(t *testing.T) {
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerWithClient(mp, "eatsrun.events")

	err := p.Publish(context.Background(), New(TypeCouponUsed, "coupon-1", "", "", time.Now(), nil))

	require.Error(t, err)
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers), "should wrap broker error")
	assert.Contains(t, err.Error(), "send event coupon.used")
	require.NoError(t, p.Close())
}

func TestProducer_Publish_CanceledContext(t *testing.T) {
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	p := NewProducerWithClient(mp, "eatsrun.events")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, New(TypeRewardClaimed, "reward-1", "", "", time.Now(), nil))

	require.ErrorIs(t, err, context.Canceled)
	require.NoError(t, p.Close())
}

func TestProducer_CloseNil(t *testing.T) {
	var p *Producer
	assert.NoError(t, p.Close())
}

func TestNew(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.FixedZone("KST", 9*3600))

	ev := New(TypeVisitRecorded, "visit-1", "user-1", "event-1", at, nil)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, TypeVisitRecorded, ev.Type)
	assert.Equal(t, time.UTC, ev.OccurredAt.Location())
	assert.True(t, ev.OccurredAt.Equal(at))
}

func TestNoop_Publish(t *testing.T) {
	assert.NoError(t, Noop{}.Publish(context.Background(), Event{}))
}
