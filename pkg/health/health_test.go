package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

type statusBody struct {
	Status string
	Checks map[string]string
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) statusBody {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := statusBody{Checks: map[string]string{}}
	err := jx.DecodeBytes(w.Body.Bytes()).ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "status":
			s, err := d.Str()
			body.Status = s
			return err
		case "checks":
			return d.ObjBytes(func(d *jx.Decoder, name []byte) error {
				reason, err := d.Str()
				body.Checks[string(name)] = reason
				return err
			})
		default:
			return d.Skip()
		}
	})
	require.NoError(t, err)
	return body
}

func serve(h http.HandlerFunc, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func pollN(p *probe, n int) {
	for range n {
		p.poll(context.Background())
	}
}

func TestLiveEndpoint_AllPassing(t *testing.T) {
	h := New()
	h.Add(Liveness, Check{Name: "a", Func: passing})
	h.Add(Liveness, Check{Name: "b", Func: passing})

	w := serve(h.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeStatus(t, w).Status)
}

func TestLiveEndpoint_NoChecks(t *testing.T) {
	w := serve(New().LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeStatus(t, w).Checks)
}

func TestLiveEndpoint_FailureThreshold(t *testing.T) {
	h := New()
	h.Add(Liveness, Check{Name: "goroutines", Func: failing("too many")})
	p := h.snapshot(Liveness)[0]

	pollN(p, 2)
	assert.Equal(t, http.StatusOK, serve(h.LiveEndpoint, "/livez").Code, "below threshold")

	pollN(p, 1)
	w := serve(h.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeStatus(t, w)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "too many", body.Checks["goroutines"])
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("NotReady", func(t *testing.T) {
		h := New()
		h.Add(Readiness, Check{Name: "upstream", Func: passing})

		w := serve(h.ReadyEndpoint, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, decodeStatus(t, w).Checks, "_readiness")
	})
	t.Run("Ready", func(t *testing.T) {
		h := New()
		h.Add(Readiness, Check{Name: "upstream", Func: passing})
		h.SetReady(true)
		assert.Equal(t, http.StatusOK, serve(h.ReadyEndpoint, "/readyz").Code)

		h.SetReady(false)
		assert.Equal(t, http.StatusServiceUnavailable, serve(h.ReadyEndpoint, "/readyz").Code)
	})
	t.Run("OneFailing", func(t *testing.T) {
		h := New()
		h.Add(Readiness, Check{Name: "cache", Func: passing})
		h.Add(Readiness, Check{Name: "upstream", Func: failing("connection refused")})
		h.SetReady(true)
		pollN(h.snapshot(Readiness)[1], 3)

		w := serve(h.ReadyEndpoint, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := decodeStatus(t, w)
		assert.Equal(t, "connection refused", body.Checks["upstream"])
		assert.NotContains(t, body.Checks, "cache")
		assert.False(t, h.IsReady())
	})
}

func TestProbe_Recovers(t *testing.T) {
	var down atomic.Bool
	down.Store(true)
	h := New()
	h.Add(Liveness, Check{Name: "flaky", SuccessThreshold: 2, Func: func(context.Context) error {
		if down.Load() {
			return errors.New("down")
		}
		return nil
	}})
	p := h.snapshot(Liveness)[0]

	pollN(p, 3)
	assert.Equal(t, "down", p.failure())

	down.Store(false)
	pollN(p, 1)
	assert.NotEmpty(t, p.failure(), "one success is below the threshold")
	pollN(p, 1)
	assert.Empty(t, p.failure())
}

func TestProbe_Timeout(t *testing.T) {
	h := New()
	h.Add(Readiness, Check{Name: "slow", Timeout: 10 * time.Millisecond, FailureThreshold: 1, Func: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	p := h.snapshot(Readiness)[0]
	pollN(p, 1)
	assert.Equal(t, context.DeadlineExceeded.Error(), p.failure())
}

func TestRun_PollsUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	h := New()
	h.Add(Readiness, Check{Name: "upstream", Func: func(context.Context) error {
		calls.Add(1)
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestConcurrentAccess(t *testing.T) {
	h := New()
	h.Add(Liveness, Check{Name: "concurrent", Func: failing("err")})
	h.Add(Readiness, Check{Name: "concurrent", Func: passing})
	h.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = h.Run(ctx, time.Millisecond) }()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				h.IsReady()
				serve(h.LiveEndpoint, "/livez")
				serve(h.ReadyEndpoint, "/readyz")
			}
		}()
	}
	wg.Wait()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}

func TestPingCheck(t *testing.T) {
	assert.NoError(t, PingCheck("upstream", passing)(context.Background()))

	err := PingCheck("upstream", failing("refused"))(context.Background())
	require.Error(t, err)
	assert.Equal(t, "ping upstream: refused", err.Error())
}
