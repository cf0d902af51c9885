package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/asyncflow/internal/fetch"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newUpstream serves /posts/1, /posts/2, /slow, /broken and /html.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/posts/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	mux.HandleFunc("/posts/2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":2}`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"id":"slow"}`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSleep_WaitsAtLeastDuration(t *testing.T) {
	start := time.Now()
	if err := Sleep(context.Background(), 50*time.Millisecond); err != nil {
		t.Fatalf("Sleep() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Sleep() returned after %v, want >= 50ms", elapsed)
	}
}

func TestSleep_NegativeIsZero(t *testing.T) {
	start := time.Now()
	if err := Sleep(context.Background(), -time.Hour); err != nil {
		t.Fatalf("Sleep() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Sleep(-1h) took %v, want immediate return", elapsed)
	}
}

func TestSleep_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
}

func TestIterate_PreservesOrderAndSpacing(t *testing.T) {
	const interval = 50 * time.Millisecond
	values := []string{"A", "B", "C", "D"}

	var (
		seen  []string
		times []time.Time
	)
	start := time.Now()
	err := Iterate(context.Background(), values, interval, func(v string) {
		seen = append(seen, v)
		times = append(times, time.Now())
	})
	if err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}

	if len(seen) != len(values) {
		t.Fatalf("observed %d values, want %d", len(seen), len(values))
	}
	for i := range values {
		if seen[i] != values[i] {
			t.Errorf("seen[%d] = %q, want %q", i, seen[i], values[i])
		}
	}

	if times[0].Sub(start) < interval {
		t.Errorf("first observation after %v, want >= %v", times[0].Sub(start), interval)
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < interval {
			t.Errorf("gap between %q and %q = %v, want >= %v", seen[i-1], seen[i], gap, interval)
		}
	}
}

func TestIterate_DefaultInterval(t *testing.T) {
	var count int
	start := time.Now()
	err := Iterate(context.Background(), []string{"x", "y"}, DefaultInterval, func(string) {
		count++
	})
	if err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}
	if count != 2 {
		t.Errorf("observed %d values, want 2", count)
	}
	if elapsed := time.Since(start); elapsed < 2*time.Second {
		t.Errorf("Iterate() took %v, want >= 2s", elapsed)
	}
}

func TestIterate_Empty(t *testing.T) {
	start := time.Now()
	err := Iterate(context.Background(), nil, time.Hour, func(string) {
		t.Error("observer called for empty input")
	})
	if err != nil {
		t.Fatalf("Iterate() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Iterate(nil) took %v, want immediate return", elapsed)
	}
}

func TestIterate_ObserverPanicPropagates(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected observer panic to propagate")
		}
	}()

	_ = Iterate(context.Background(), []string{"A"}, 0, func(string) {
		panic("observer failed")
	})
}

func TestIterate_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 75*time.Millisecond)
	defer cancel()

	var count int
	err := Iterate(ctx, []string{"A", "B", "C", "D"}, 50*time.Millisecond, func(string) {
		count++
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Iterate() error = %v, want context.DeadlineExceeded", err)
	}
	if count != 1 {
		t.Errorf("observed %d values before deadline, want 1", count)
	}
}

func TestRunner_FetchOne(t *testing.T) {
	upstream := newUpstream(t)

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "success", url: upstream.URL + "/posts/1", want: `{"id":1}`},
		{name: "error status", url: upstream.URL + "/broken", wantErr: true},
		{name: "not json", url: upstream.URL + "/html", wantErr: true},
		{name: "unreachable", url: "http://127.0.0.1:1/posts/1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(fetch.NewClient(), tt.url, 0, testLogger())
			got, err := r.FetchOne(context.Background())

			if tt.wantErr {
				if err != ErrFetchAPI {
					t.Fatalf("FetchOne() error = %v, want exactly ErrFetchAPI", err)
				}
				if err.Error() != "Error fetching data from API" {
					t.Errorf("error message = %q", err.Error())
				}
				if got != nil {
					t.Errorf("FetchOne() payload = %s, want nil", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("FetchOne() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("FetchOne() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRunner_FetchOne_Idempotent(t *testing.T) {
	upstream := newUpstream(t)
	r := NewRunner(fetch.NewClient(), upstream.URL+"/posts/2", 0, testLogger())

	first, err := r.FetchOne(context.Background())
	if err != nil {
		t.Fatalf("FetchOne() error = %v", err)
	}
	second, err := r.FetchOne(context.Background())
	if err != nil {
		t.Fatalf("FetchOne() error = %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("repeated FetchOne() = %s then %s", first, second)
	}
}

// TestRunner_FetchAll_InputOrder uses a slow first resource so completion
// order differs from input order.
func TestRunner_FetchAll_InputOrder(t *testing.T) {
	upstream := newUpstream(t)
	r := NewRunner(fetch.NewClient(), "", 0, testLogger())

	urls := []string{
		upstream.URL + "/slow",
		upstream.URL + "/posts/1",
		upstream.URL + "/posts/2",
	}
	got, err := r.FetchAll(context.Background(), urls)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	want := []string{`{"id":"slow"}`, `{"id":1}`, `{"id":2}`}
	if len(got) != len(want) {
		t.Fatalf("len(FetchAll()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if string(got[i]) != want[i] {
			t.Errorf("result[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRunner_FetchAll_Empty(t *testing.T) {
	r := NewRunner(fetch.NewClient(), "", 0, testLogger())

	got, err := r.FetchAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if got == nil {
		t.Fatal("FetchAll(nil) = nil, want empty non-nil slice")
	}

	data, _ := json.Marshal(got)
	if string(data) != "[]" {
		t.Errorf("json = %s, want []", data)
	}
}

// TestRunner_FetchAll_Concurrent verifies that every request is in flight
// before any is answered, including more requests to one host than the idle
// pool keeps.
func TestRunner_FetchAll_Concurrent(t *testing.T) {
	const n = 12

	var (
		inFlight atomic.Int32
		release  = make(chan struct{})
		once     sync.Once
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inFlight.Add(1) == n {
			once.Do(func() { close(release) })
		}
		select {
		case <-release:
		case <-time.After(2 * time.Second):
			http.Error(w, "not all requests arrived", http.StatusGatewayTimeout)
			return
		}
		_, _ = w.Write([]byte(`true`))
	}))
	defer server.Close()

	urls := make([]string, n)
	for i := range urls {
		urls[i] = server.URL
	}

	r := NewRunner(fetch.NewClient(), "", 0, testLogger())
	got, err := r.FetchAll(context.Background(), urls)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(got) != n {
		t.Errorf("len(FetchAll()) = %d, want %d", len(got), n)
	}
}

func TestRunner_FetchAll_OneFailureFailsBatch(t *testing.T) {
	upstream := newUpstream(t)
	r := NewRunner(fetch.NewClient(), "", 0, testLogger())

	urls := []string{
		upstream.URL + "/posts/1",
		upstream.URL + "/broken",
		upstream.URL + "/posts/2",
	}
	got, err := r.FetchAll(context.Background(), urls)
	if err != ErrFetchMany {
		t.Fatalf("FetchAll() error = %v, want exactly ErrFetchMany", err)
	}
	if err.Error() != "Error fetching data from one or more URLs" {
		t.Errorf("error message = %q", err.Error())
	}
	if got != nil {
		t.Errorf("FetchAll() returned partial data %v", got)
	}
}

// TestRunner_FetchAll_FailFast verifies that a failure cancels requests that
// are still pending instead of waiting for them.
func TestRunner_FetchAll_FailFast(t *testing.T) {
	hang := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer hang.Close()
	upstream := newUpstream(t)

	r := NewRunner(fetch.NewClient(), "", 0, testLogger())

	start := time.Now()
	_, err := r.FetchAll(context.Background(), []string{hang.URL, upstream.URL + "/broken"})
	if !errors.Is(err, ErrFetchMany) {
		t.Fatalf("FetchAll() error = %v, want ErrFetchMany", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("FetchAll() took %v, pending request was not cancelled", elapsed)
	}
}
