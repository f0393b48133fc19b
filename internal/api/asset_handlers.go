package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rhedu/adstudio-server/internal/domain"
	domainerrors "github.com/rhedu/adstudio-server/internal/errors"
	"github.com/rhedu/adstudio-server/internal/logger"
)

func (s *Server) registerAssetRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listChannelAssetSpecs",
		Method:      http.MethodGet,
		Path:        "/api/assets",
		Summary:     "List asset specs for a channel",
		Description: "Returns the channel's creative asset specs in file order. Unknown channels return an empty array.",
		Tags:        []string{"Assets"},
	}, s.handleListAssetSpecs)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAssetSpecs",
		Method:      http.MethodGet,
		Path:        "/api/v1/asset-specs",
		Summary:     "Get asset specs",
		Description: "Returns a channel's asset specs, matching the channel case-insensitively. A channel with no specs is a 404.",
		Tags:        []string{"Assets"},
	}, s.handleGetAssetSpecs)
}

// ListAssetSpecsInput contains parameters for listing asset specs.
// channel is checked by the handler so that its absence is a 400.
type ListAssetSpecsInput struct {
	Channel string `query:"channel" doc:"Channel identifier, e.g. TIKTOK"`
}

// ListAssetSpecsOutput is a bare JSON array.
type ListAssetSpecsOutput struct {
	Body []domain.AssetSpec
}

// GetAssetSpecsInput selects a channel and optionally a file type.
type GetAssetSpecsInput struct {
	Channel  string `query:"channel" doc:"Channel name in any case, e.g. TikTok"`
	FileType string `query:"file_type" doc:"Only specs accepting this file type, e.g. mp4"`
}

// AssetSpecView is an asset spec with derived properties.
type AssetSpecView struct {
	domain.AssetSpec
	IsVideo bool `json:"is_video" doc:"Whether the placement has a duration limit"`
}

// AssetSpecsResponse wraps a channel's specs.
type AssetSpecsResponse struct {
	Channel string          `json:"channel" doc:"Channel as requested"`
	Specs   []AssetSpecView `json:"specs"`
}

// GetAssetSpecsOutput wraps the specs for Huma.
type GetAssetSpecsOutput struct {
	Body AssetSpecsResponse
}

func (s *Server) handleListAssetSpecs(ctx context.Context, input *ListAssetSpecsInput) (*ListAssetSpecsOutput, error) {
	if input.Channel == "" {
		return nil, fromDomain(domainerrors.MissingParameter("channel"))
	}

	specs, err := s.resolver.AssetSpecsForChannel(ctx, input.Channel)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to load asset specs",
			"channel", input.Channel,
			"error", err,
		)
		return nil, toAPIError(err)
	}

	return &ListAssetSpecsOutput{Body: specs}, nil
}

func (s *Server) handleGetAssetSpecs(ctx context.Context, input *GetAssetSpecsInput) (*GetAssetSpecsOutput, error) {
	if input.Channel == "" {
		return nil, fromDomain(domainerrors.MissingParameter("channel"))
	}

	specs, err := s.resolver.AssetSpecsForChannelFold(ctx, input.Channel)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to load asset specs",
			"channel", input.Channel,
			"error", err,
		)
		return nil, toAPIError(err)
	}

	views := make([]AssetSpecView, 0, len(specs))
	for _, spec := range specs {
		if input.FileType != "" && !spec.AcceptsFileType(input.FileType) {
			continue
		}
		views = append(views, AssetSpecView{AssetSpec: spec, IsVideo: spec.IsVideo()})
	}
	if len(views) == 0 {
		return nil, fromDomain(domainerrors.NotFoundf("no asset specs for channel %q", input.Channel))
	}

	return &GetAssetSpecsOutput{
		Body: AssetSpecsResponse{
			Channel: input.Channel,
			Specs:   views,
		},
	}, nil
}
