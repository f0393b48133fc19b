package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rhedu/adstudio-server/internal/cache"
	domainerrors "github.com/rhedu/adstudio-server/internal/errors"
	"github.com/rhedu/adstudio-server/internal/logger"
	"github.com/rhedu/adstudio-server/internal/resolver"
)

func (s *Server) registerConfigRoutes() {
	for _, method := range []string{http.MethodPost, http.MethodGet} {
		opID := "revalidateConfig"
		if method == http.MethodGet {
			opID = "revalidateConfigGet"
		}
		huma.Register(s.api, huma.Operation{
			OperationID: opID,
			Method:      method,
			Path:        pathRevalidate,
			Summary:     "Revalidate config",
			Description: "Clears the config cache so the next read re-loads and re-validates every source",
			Tags:        []string{"Config"},
		}, s.handleRevalidate)
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "getConfigStatus",
		Method:      http.MethodGet,
		Path:        "/api/config/status",
		Summary:     "Config cache status",
		Description: "Lists cached sources, per-source load counts and dangling channel references",
		Tags:        []string{"Config"},
	}, s.handleConfigStatus)
}

// === DTOs ===

// RevalidateResponse acknowledges a cache clear.
type RevalidateResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ClearedEntries int    `json:"cleared_entries" doc:"Number of cached sources dropped"`
}

// RevalidateOutput wraps the acknowledgment for Huma.
type RevalidateOutput struct {
	Body RevalidateResponse
}

// ConfigStatusResponse describes the cache and the loaded data.
type ConfigStatusResponse struct {
	Entries   []cache.EntryInfo         `json:"entries"`
	Loads     map[string]int            `json:"loads" doc:"Source reads since start, keyed by source"`
	Integrity *resolver.IntegrityReport `json:"integrity"`
}

// ConfigStatusOutput wraps the status for Huma.
type ConfigStatusOutput struct {
	Body ConfigStatusResponse
}

// === Handlers ===

func (s *Server) handleRevalidate(ctx context.Context, _ *struct{}) (out *RevalidateOutput, err error) {
	log := logger.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Config cache clear failed", "panic", r)
			out = nil
			err = fromDomain(domainerrors.Internalf("failed to clear config cache: %v", r))
		}
	}()

	cleared := s.resolver.Invalidate()

	return &RevalidateOutput{
		Body: RevalidateResponse{
			Success:        true,
			Message:        "Config cache cleared",
			ClearedEntries: cleared,
		},
	}, nil
}

func (s *Server) handleConfigStatus(ctx context.Context, _ *struct{}) (*ConfigStatusOutput, error) {
	loader := s.resolver.Loader()

	// Audit loads every source, so it runs before the entries are listed.
	report, err := s.resolver.Audit(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}

	counts := loader.LoadCounts()
	loads := make(map[string]int, len(counts))
	for name, n := range counts {
		loads[string(name)] = n
	}

	return &ConfigStatusOutput{
		Body: ConfigStatusResponse{
			Entries:   loader.Entries(),
			Loads:     loads,
			Integrity: report,
		},
	}, nil
}
