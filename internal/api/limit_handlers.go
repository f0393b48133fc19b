package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rhedu/adstudio-server/internal/domain"
	domainerrors "github.com/rhedu/adstudio-server/internal/errors"
	"github.com/rhedu/adstudio-server/internal/limits"
	"github.com/rhedu/adstudio-server/internal/logger"
)

func (s *Server) registerLimitRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getAdLimits",
		Method:      http.MethodGet,
		Path:        "/api/v1/ad-limits",
		Summary:     "Get ad limits",
		Description: "Returns the limit profile for a channel and optional subtype, falling back to the channel default",
		Tags:        []string{"Limits"},
	}, s.handleGetAdLimits)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkLimits",
		Method:      http.MethodPost,
		Path:        "/api/v1/limits/check",
		Summary:     "Check generated copy",
		Description: "Measures generated copy against the channel's limits and suggests shortened text",
		Tags:        []string{"Limits"},
	}, s.handleCheckLimits)
}

// === DTOs ===

// GetAdLimitsInput contains parameters for resolving a limit profile.
type GetAdLimitsInput struct {
	Channel string `query:"channel" doc:"Channel identifier, e.g. REDDIT"`
	Subtype string `query:"subtype" doc:"Campaign subtype, e.g. Open Day"`
}

// AdLimitsResponse is a limit profile with its rendered forms.
type AdLimitsResponse struct {
	domain.AdLimit
	Summary      string `json:"summary" doc:"One-line summary, e.g. headline: 40 chars"`
	Display      string `json:"display" doc:"Markdown bullet list for prompts and pages"`
	EmojiAllowed bool   `json:"emoji_allowed" doc:"Whether the channel permits emoji at all"`
}

// GetAdLimitsOutput wraps the profile for Huma.
type GetAdLimitsOutput struct {
	Body AdLimitsResponse
}

// CheckLimitsRequest carries generated copy keyed by field name.
type CheckLimitsRequest struct {
	Channel string              `json:"channel" minLength:"1" doc:"Channel identifier"`
	Subtype string              `json:"subtype,omitempty" doc:"Campaign subtype"`
	Fields  map[string][]string `json:"fields" validate:"dive,keys,required,endkeys" doc:"Generated values per field"`
}

// CheckLimitsInput wraps the check request for Huma.
type CheckLimitsInput struct {
	Body CheckLimitsRequest
}

// CheckLimitsResponse lists measured fields and any over-limit warnings.
type CheckLimitsResponse struct {
	Channel   string                  `json:"channel"`
	Subtype   string                  `json:"subtype"`
	Fields    []domain.GeneratedField `json:"fields"`
	Warnings  []domain.LimitWarning   `json:"warnings"`
	Unmatched []string                `json:"unmatched" doc:"Submitted fields the profile does not define"`
}

// CheckLimitsOutput wraps the check response for Huma.
type CheckLimitsOutput struct {
	Body CheckLimitsResponse
}

// === Handlers ===

func (s *Server) handleGetAdLimits(ctx context.Context, input *GetAdLimitsInput) (*GetAdLimitsOutput, error) {
	if input.Channel == "" {
		return nil, fromDomain(domainerrors.MissingParameter("channel"))
	}

	limit, err := s.lookupLimit(ctx, input.Channel, input.Subtype)
	if err != nil {
		return nil, err
	}

	emoji, err := s.resolver.IsEmojiAllowedForChannel(ctx, input.Channel)
	if err != nil {
		return nil, toAPIError(err)
	}

	return &GetAdLimitsOutput{
		Body: AdLimitsResponse{
			AdLimit:      *limit,
			Summary:      limits.Summarize(*limit),
			Display:      limits.FormatForDisplay(*limit),
			EmojiAllowed: emoji,
		},
	}, nil
}

func (s *Server) handleCheckLimits(ctx context.Context, input *CheckLimitsInput) (*CheckLimitsOutput, error) {
	req := input.Body
	if err := s.validator.Validate(req); err != nil {
		return nil, toAPIError(err)
	}

	limit, err := s.lookupLimit(ctx, req.Channel, req.Subtype)
	if err != nil {
		return nil, err
	}

	fields, warnings := limits.Check(req.Fields, *limit)
	unmatched := limits.Unmatched(req.Fields, *limit)
	if len(unmatched) > 0 {
		logger.FromContext(ctx).Warn("Generated fields not in limit profile",
			"channel", req.Channel,
			"subtype", limit.SubtypeLabel(),
			"fields", unmatched,
		)
	}

	return &CheckLimitsOutput{
		Body: CheckLimitsResponse{
			Channel:   limit.Channel,
			Subtype:   limit.SubtypeLabel(),
			Fields:    fields,
			Warnings:  warnings,
			Unmatched: unmatched,
		},
	}, nil
}

// lookupLimit resolves a profile or returns a 404.
func (s *Server) lookupLimit(ctx context.Context, channel, subtype string) (*domain.AdLimit, error) {
	var sub *string
	if subtype != "" {
		sub = &subtype
	}

	limit, err := s.resolver.AdLimitsForChannel(ctx, channel, sub)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to resolve ad limits",
			"channel", channel,
			"subtype", subtype,
			"error", err,
		)
		return nil, toAPIError(err)
	}
	if limit == nil {
		return nil, fromDomain(domainerrors.NotFoundf("no ad limits for channel %q", channel))
	}
	return limit, nil
}
