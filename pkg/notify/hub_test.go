package notify

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"adminpanel/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, s *Subscription) Envelope {
	t.Helper()
	select {
	case env, ok := <-s.Events():
		require.True(t, ok, "subscription closed")
		return env
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return Envelope{}
}

func TestHub_PublishReachesEverySubscriber(t *testing.T) {
	h := NewHub()
	a := h.Subscribe(StudentsChannel)
	b := h.Subscribe(StudentsChannel)
	other := h.Subscribe("other")
	defer a.Close()
	defer b.Close()
	defer other.Close()

	rec := models.Record{ID: "01", Name: "A"}
	require.NoError(t, h.Publish(context.Background(), StudentsChannel, EventCreated, RecordPayload{Student: rec}))

	for _, s := range []*Subscription{a, b} {
		env := recv(t, s)
		assert.Equal(t, EventCreated, env.Event)
		var p RecordPayload
		require.NoError(t, json.Unmarshal(env.Data, &p))
		assert.Equal(t, rec, p.Student)
	}
	select {
	case <-other.Events():
		t.Fatal("event leaked to another channel")
	default:
	}
}

func TestHub_CloseUnbinds(t *testing.T) {
	h := NewHub()
	s := h.Subscribe(StudentsChannel)
	assert.Equal(t, 1, h.Subscribers(StudentsChannel))

	s.Close()
	s.Close()
	assert.Equal(t, 0, h.Subscribers(StudentsChannel))

	_, ok := <-s.Events()
	assert.False(t, ok)

	assert.NoError(t, h.Publish(context.Background(), StudentsChannel, EventDeleted, DeletePayload{ID: "x"}))
}

func TestHub_DropsForSlowSubscriber(t *testing.T) {
	var drops atomic.Int32
	h := NewHub(WithBuffer(1), WithDropHook(func(string, string) { drops.Add(1) }))
	s := h.Subscribe(StudentsChannel)
	defer s.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, h.Publish(context.Background(), StudentsChannel, EventDeleted, DeletePayload{ID: "x"}))
	}
	assert.Equal(t, int32(2), drops.Load())
	recv(t, s)
}

func TestDecodeEnvelope(t *testing.T) {
	env, err := NewEnvelope(StudentsChannel, EventDeleted, DeletePayload{ID: "abc"})
	require.NoError(t, err)
	b, err := json.Marshal(env)
	require.NoError(t, err)

	got, err := DecodeEnvelope(b)
	require.NoError(t, err)
	assert.Equal(t, env.Event, got.Event)
	assert.JSONEq(t, `{"id":"abc"}`, string(got.Data))

	_, err = DecodeEnvelope([]byte(`{"data":{}}`))
	assert.Error(t, err)
	_, err = DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)
}
