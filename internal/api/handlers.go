package api

import (
	"net/http"

	"github.com/insight-sphere/internal/circuitbreaker"
	apperrors "github.com/insight-sphere/internal/errors"
	"github.com/insight-sphere/internal/logging"
	"github.com/insight-sphere/internal/types"
)

// healthResponse extends the health status with upstream details
type healthResponse struct {
	types.HealthStatus
	Provider string                `json:"provider"`
	Upstream *circuitbreaker.Stats `json:"upstream,omitempty"`
	Cache    bool                  `json:"cache_enabled"`
}

type breakerReporter interface {
	Breaker() *circuitbreaker.CircuitBreaker
}

func (s *Server) health() types.HealthStatus {
	return types.HealthStatus{
		Service:   ServiceName,
		Status:    "running",
		Timestamp: s.now(),
	}
}

// handleRoot answers the bare health check
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.health())
}

// handleHealth reports provider and breaker state in an envelope
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		HealthStatus: s.health(),
		Provider:     s.provider.Name(),
		Cache:        s.cache != nil,
	}
	if br, ok := s.provider.(breakerReporter); ok {
		stats := br.Breaker().GetStats()
		resp.Upstream = &stats
		if stats.State != circuitbreaker.StateClosed {
			resp.Status = "degraded"
		}
	}
	respondData(w, resp)
}

func (s *Server) handleGlobal(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.provider.Global(r.Context())
	if err != nil {
		respondFailure(w, r, types.ResourceGlobal, err)
		return
	}
	respondData(w, snapshot)
}

func (s *Server) handleTopCryptos(w http.ResponseWriter, r *http.Request) {
	assets, err := s.provider.TopAssets(r.Context())
	if err != nil {
		respondFailure(w, r, types.ResourceTopAssets, err)
		return
	}
	if assets == nil {
		assets = types.AssetList{}
	}
	respondData(w, assets)
}

func (s *Server) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		respondData(w, types.CacheStatus{CacheDetails: map[string]types.CacheEntryStatus{}})
		return
	}

	status, err := s.cache.Status(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Warn("Cache status unavailable")
		respondError(w, apperrors.GetHTTPStatusCode(err), "cache status unavailable")
		return
	}
	respondData(w, status)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, apperrors.NewNotFoundError(r.URL.Path).Message)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "method not allowed")
}
