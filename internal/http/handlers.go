package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.store == nil:
		checks["storage"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	case s.ready != nil:
		if err := s.ready(ctx); err != nil {
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	default:
		checks["storage"] = "ok"
	}

	checks["cache"] = map[string]any{
		"balance_entries": s.balanceCache.Size(),
		"status":          "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}

	w.WriteHeader(http.StatusOK)
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "Total number of 5xx responses", "counter", traceMetrics.ServerErrors)
	metric("http_response_time_avg_microseconds", "Average response time", "gauge", traceMetrics.AverageResponseTime)
	metric("transfers_completed_total", "Transfers written", "counter", atomic.LoadInt64(&s.appMetrics.transfersCompleted))
	metric("transfers_failed_total", "Transfers rejected or failed", "counter", atomic.LoadInt64(&s.appMetrics.transfersFailed))
	metric("cache_hits_total", "Balance cache hits", "counter", atomic.LoadInt64(&s.appMetrics.cacheHits))
	metric("cache_misses_total", "Balance cache misses", "counter", atomic.LoadInt64(&s.appMetrics.cacheMisses))
	metric("cache_entries", "Current balance cache entries", "gauge", s.balanceCache.Size())
	metric("rate_limit_hits_total", "Total rate limit hits", "counter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "Total suspicious requests detected", "counter", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", fmt.Sprintf("%.0f", time.Since(s.appMetrics.uptime).Seconds()))
}

// balance returns the account's remaining amount over its full history.
// Cached values are used for display unless fresh is set.
func (s *Server) balance(ctx context.Context, userID, accountID string, fresh bool) (int64, error) {
	key := balanceKey(userID, accountID)
	if !fresh {
		if v, ok := s.balanceCache.Get(key); ok {
			atomic.AddInt64(&s.appMetrics.cacheHits, 1)
			return v, nil
		}
	}
	atomic.AddInt64(&s.appMetrics.cacheMisses, 1)

	sum, err := s.store.Summary(ctx, core.SummaryQuery{
		UserID:    userID,
		AccountID: accountID,
		From:      core.Epoch(),
		To:        s.today(),
	})
	if err != nil {
		return 0, fmt.Errorf("balance of %s: %w", accountID, err)
	}
	s.balanceCache.Set(key, sum.RemainingAmount)
	log.FromContext(ctx).DebugContext(ctx, "Balance loaded",
		log.FieldAccountID, accountID,
		log.FieldRemaining, sum.RemainingAmount)
	return sum.RemainingAmount, nil
}

// invalidateBalances drops every cached balance of userID.
func (s *Server) invalidateBalances(userID string) {
	s.balanceCache.DeletePrefix(balanceKey(userID, ""))
}
