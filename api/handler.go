// Package api serves the published dashboard snapshots over read-only JSON
// endpoints. Handlers never compute anything; they only read the cache the
// refresh pipeline publishes to.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"slices"
	"strconv"

	"github.com/pkg/errors"

	"github.com/kleros/t2cr-dashboard-backend/db"
)

// CacheReader reads a published artifact by cache key.
type CacheReader interface {
	Get(ctx context.Context, key string) (string, error)
}

// RefreshReader reads the unix time of the last completed refresh.
type RefreshReader interface {
	GetLastRefresh(network string) (int64, error)
}

type Handler struct {
	cache    CacheReader
	store    RefreshReader
	networks []string
}

type PriceResponse struct {
	Price float64 `json:"price"`
}

type DepositDataResponse struct {
	DepositData json.RawMessage `json:"depositData"`
}

type CountByStatusResponse struct {
	CountByStatus json.RawMessage `json:"countByStatus"`
}

type CrowdfundingTokensResponse struct {
	CrowdfundingTokens json.RawMessage `json:"crowdfundingTokens"`
}

type StatusResponse struct {
	LastRefreshTimes map[string]int64 `json:"lastRefreshTimes"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the dashboard handler. networks is the set of valid
// values of the `network` query parameter; the first entry is the default.
func NewHandler(cache CacheReader, store RefreshReader, networks []string) *Handler {
	return &Handler{cache: cache, store: store, networks: networks}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/eth-price", h.GetEthPrice)
	mux.HandleFunc("/deposit-data", h.GetDepositData)
	mux.HandleFunc("/tokens-by-status", h.GetTokensByStatus)
	mux.HandleFunc("/addresses-by-status", h.GetAddressesByStatus)
	mux.HandleFunc("/crowdfunding-tokens", h.GetCrowdfundingTokens)
	mux.HandleFunc("/status", h.GetStatus)
	mux.HandleFunc("/health", h.GetHealth)
}

func (h *Handler) GetEthPrice(w http.ResponseWriter, r *http.Request) {
	value, err := h.cache.Get(r.Context(), "eth-price")
	if err != nil {
		writeError(w, errors.Wrap(err, "getting eth price"))
		return
	}
	price, err := strconv.ParseFloat(value, 64)
	if err != nil {
		writeError(w, errors.Wrapf(err, "parsing cached eth price [%s]", value))
		return
	}
	writeJSON(w, PriceResponse{Price: price})
}

func (h *Handler) GetDepositData(w http.ResponseWriter, r *http.Request) {
	value, ok := h.networkArtifact(w, r, "deposit-data")
	if !ok {
		return
	}
	writeJSON(w, DepositDataResponse{DepositData: json.RawMessage(value)})
}

func (h *Handler) GetTokensByStatus(w http.ResponseWriter, r *http.Request) {
	value, ok := h.networkArtifact(w, r, "tokens-by-status")
	if !ok {
		return
	}
	writeJSON(w, CountByStatusResponse{CountByStatus: json.RawMessage(value)})
}

func (h *Handler) GetAddressesByStatus(w http.ResponseWriter, r *http.Request) {
	value, ok := h.networkArtifact(w, r, "addresses-by-status")
	if !ok {
		return
	}
	writeJSON(w, CountByStatusResponse{CountByStatus: json.RawMessage(value)})
}

func (h *Handler) GetCrowdfundingTokens(w http.ResponseWriter, r *http.Request) {
	value, ok := h.networkArtifact(w, r, "crowdfunding-tokens")
	if !ok {
		return
	}
	writeJSON(w, CrowdfundingTokensResponse{CrowdfundingTokens: json.RawMessage(value)})
}

func (h *Handler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	lastRefreshTimes := make(map[string]int64, len(h.networks))
	for _, network := range h.networks {
		lastRefresh, err := h.store.GetLastRefresh(network)
		if errors.Is(err, db.ErrNotFound) {
			lastRefreshTimes[network] = 0
			continue
		}
		if err != nil {
			writeError(w, errors.Wrapf(err, "getting last refresh of [%s]", network))
			return
		}
		lastRefreshTimes[network] = lastRefresh
	}
	writeJSON(w, StatusResponse{LastRefreshTimes: lastRefreshTimes})
}

func (h *Handler) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, HealthResponse{Status: "UP"})
}

// networkArtifact resolves the network query parameter and reads the
// network's artifact from the cache. A written error response is signalled by
// ok == false.
func (h *Handler) networkArtifact(w http.ResponseWriter, r *http.Request, artifact string) (string, bool) {
	network := r.URL.Query().Get("network")
	if network == "" {
		network = h.networks[0]
	}
	if !slices.Contains(h.networks, network) {
		writeError(w, errors.Errorf("unknown network [%s]", network))
		return "", false
	}

	value, err := h.cache.Get(r.Context(), network+"_"+artifact)
	if err != nil {
		writeError(w, errors.Wrapf(err, "getting [%s] of [%s]", artifact, network))
		return "", false
	}
	return value, true
}

func writeJSON(w http.ResponseWriter, response interface{}) {
	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "Error encoding response", 500)
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if encodeErr := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); encodeErr != nil {
		log.Printf("Error encoding error response: %v", encodeErr)
	}
}

// CORS allows browser dashboards on any origin to read the endpoints.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
