// HTTP handler for LLM provider listing and health.
package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/naviai/naviai/internal/infra/llm"
)

// healthCheckTimeout bounds each upstream probe so one slow provider cannot
// stall the whole listing.
const healthCheckTimeout = 5 * time.Second

// ProviderHandler handles GET /api/v1/llm/providers.
type ProviderHandler struct {
	registry        *llm.Registry
	defaultProvider string
}

// NewProviderHandler creates a ProviderHandler.
func NewProviderHandler(registry *llm.Registry, defaultProvider string) *ProviderHandler {
	return &ProviderHandler{registry: registry, defaultProvider: defaultProvider}
}

// ProviderStatus is one entry in the providers listing.
type ProviderStatus struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	Healthy   bool   `json:"healthy"`
}

// ProvidersResponse is the response body for the providers endpoint.
type ProvidersResponse struct {
	Providers []ProviderStatus `json:"providers"`
}

// List handles GET /api/v1/llm/providers.
// Probes every registered adapter concurrently and reports health.
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Providers()
	statuses := make([]ProviderStatus, len(names))

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for i, name := range names {
		i, name := i, name
		adapter, ok := h.registry.Get(name)
		if !ok {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i] = ProviderStatus{
				Name:      name,
				IsDefault: name == h.defaultProvider,
				Healthy:   adapter.HealthCheck(ctx),
			}
		}()
	}
	wg.Wait()

	writeJSON(w, http.StatusOK, ProvidersResponse{Providers: statuses})
}
