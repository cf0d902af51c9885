package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// StartMockUpstream serves JSON posts at /posts/{id} with random latency.
// Lower ids answer more slowly than higher ones, so /task05 results arrive
// out of order. Id 0 always fails with a 500.
func StartMockUpstream(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		if id == 0 {
			http.Error(w, "upstream failure", http.StatusInternalServerError)
			return
		}

		delay := time.Duration(400/id+rand.Intn(50)) * time.Millisecond
		time.Sleep(delay)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"id":       id,
			"title":    "post " + strconv.Itoa(id),
			"delay_ms": delay.Milliseconds(),
		}); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock upstream error", "error", err)
	}
}
