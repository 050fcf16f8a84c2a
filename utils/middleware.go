package utils

import (
	"net/http"
	"sync"
	"time"
)

const (
	rateLimitWindow   = time.Minute
	rateLimitRequests = 300
)

var (
	rateMu      sync.Mutex
	rateWindows = make(map[string][]time.Time)
)

// RateLimitMiddleware applies a fixed per-IP request budget per minute.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		rateMu.Lock()
		window := rateWindows[r.RemoteAddr]
		cutoff := now.Add(-rateLimitWindow)
		kept := window[:0]
		for _, t := range window {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) >= rateLimitRequests {
			rateWindows[r.RemoteAddr] = kept
			rateMu.Unlock()
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		rateWindows[r.RemoteAddr] = append(kept, now)
		rateMu.Unlock()

		next.ServeHTTP(w, r)
	})
}
