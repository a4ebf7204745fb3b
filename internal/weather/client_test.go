package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rainBody = `{"weather":[{"main":"Drizzle","description":"light intensity drizzle"}],"main":{"temp":9.5}}`

func TestCurrentConditionAt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "51.5074", r.URL.Query().Get("lat"))
		assert.Equal(t, "-0.1278", r.URL.Query().Get("lon"))
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		assert.Equal(t, DefaultUnits, r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(rainBody))
	}))
	defer srv.Close()

	cond, err := NewClient(srv.URL+"/data/2.5/weather", "key").CurrentConditionAt(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)
	assert.Equal(t, ConditionRain, cond.Type)
	assert.Equal(t, "light intensity drizzle", cond.Description)
	assert.InDelta(t, 9.5, cond.TemperatureC, 0.001)
	assert.Equal(t, 0.9, cond.GameplayModifiers["speed"])
}

func TestCurrentConditionAt_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"weather":[{"main":"Clear"}],"main":{"temp":20}}`))
	}))
	defer srv.Close()

	cond, err := NewClient(srv.URL, "k", WithRetry(2, time.Millisecond)).CurrentConditionAt(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, ConditionClear, cond.Type)
	assert.Nil(t, cond.GameplayModifiers)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCurrentConditionAt_Failures(t *testing.T) {
	t.Run("unauthorized is not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "bad", WithRetry(3, time.Millisecond)).CurrentConditionAt(context.Background(), 0, 0)
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("empty condition list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"weather":[],"main":{"temp":1}}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "k").CurrentConditionAt(context.Background(), 0, 0)
		assert.EqualError(t, err, ErrMsgNoConditions)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "k").CurrentConditionAt(context.Background(), 0, 0)
		assert.ErrorContains(t, err, ErrMsgDecodeFailed)
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, ConditionFog, Normalize("Mist"))
	assert.Equal(t, ConditionThunderstorm, Normalize(" Thunderstorm "))
	assert.Equal(t, "tornado", Normalize("Tornado"))
}

func TestStatic(t *testing.T) {
	s := NewStatic("Snow")
	cond, err := s.CurrentConditionAt(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, ConditionSnow, cond.Type)

	cond.GameplayModifiers["speed"] = 10
	again, _ := s.CurrentConditionAt(context.Background(), 0, 0)
	assert.Equal(t, 0.8, again.GameplayModifiers["speed"])

	s.Set("clear")
	cond, _ = s.CurrentConditionAt(context.Background(), 0, 0)
	assert.Equal(t, ConditionClear, cond.Type)
}
