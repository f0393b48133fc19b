package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rhedu/adstudio-server/internal/domain"
)

func (s *Server) registerTaxonomyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTaxonomies",
		Method:      http.MethodGet,
		Path:        "/api/v1/taxonomies",
		Summary:     "Get taxonomies",
		Description: "Returns channels, tones, audiences and subtypes in display order",
		Tags:        []string{"Taxonomies"},
	}, s.handleGetTaxonomies)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChannelEmoji",
		Method:      http.MethodGet,
		Path:        "/api/v1/channels/{channel}/emoji",
		Summary:     "Get channel emoji policy",
		Description: "Reports whether emoji are allowed on a channel. Unknown channels report false.",
		Tags:        []string{"Taxonomies"},
	}, s.handleGetChannelEmoji)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPromptHints",
		Method:      http.MethodGet,
		Path:        "/api/v1/hints",
		Summary:     "Get prompt hints",
		Description: "Returns the copywriting hints for a tone and an audience, with defaults for unconfigured values",
		Tags:        []string{"Taxonomies"},
	}, s.handleGetPromptHints)
}

// === DTOs ===

// TaxonomiesOutput wraps the taxonomies for Huma.
type TaxonomiesOutput struct {
	Body *domain.Taxonomies
}

// ChannelEmojiInput contains the channel path parameter.
type ChannelEmojiInput struct {
	Channel string `path:"channel" doc:"Channel identifier"`
}

// ChannelEmojiResponse is a channel's emoji policy.
type ChannelEmojiResponse struct {
	Channel      string `json:"channel"`
	EmojiAllowed bool   `json:"emoji_allowed"`
}

// ChannelEmojiOutput wraps the emoji policy for Huma.
type ChannelEmojiOutput struct {
	Body ChannelEmojiResponse
}

// PromptHintsInput selects a tone and an audience.
type PromptHintsInput struct {
	Tone     string `query:"tone" doc:"Tone of voice, e.g. Friendly"`
	Audience string `query:"audience" doc:"Target audience, e.g. Parents"`
}

// PromptHintsResponse holds the resolved hints.
type PromptHintsResponse struct {
	Tone         string `json:"tone"`
	ToneHint     string `json:"tone_hint"`
	Audience     string `json:"audience"`
	AudienceHint string `json:"audience_hint"`
}

// PromptHintsOutput wraps the hints for Huma.
type PromptHintsOutput struct {
	Body PromptHintsResponse
}

// === Handlers ===

func (s *Server) handleGetTaxonomies(ctx context.Context, _ *struct{}) (*TaxonomiesOutput, error) {
	tax, err := s.resolver.LoadTaxonomies(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &TaxonomiesOutput{Body: tax}, nil
}

func (s *Server) handleGetChannelEmoji(ctx context.Context, input *ChannelEmojiInput) (*ChannelEmojiOutput, error) {
	allowed, err := s.resolver.IsEmojiAllowedForChannel(ctx, input.Channel)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &ChannelEmojiOutput{
		Body: ChannelEmojiResponse{
			Channel:      input.Channel,
			EmojiAllowed: allowed,
		},
	}, nil
}

func (s *Server) handleGetPromptHints(ctx context.Context, input *PromptHintsInput) (*PromptHintsOutput, error) {
	toneHint, err := s.resolver.ToneHint(ctx, input.Tone)
	if err != nil {
		return nil, toAPIError(err)
	}
	audienceHint, err := s.resolver.AudienceHint(ctx, input.Audience)
	if err != nil {
		return nil, toAPIError(err)
	}

	return &PromptHintsOutput{
		Body: PromptHintsResponse{
			Tone:         input.Tone,
			ToneHint:     toneHint,
			Audience:     input.Audience,
			AudienceHint: audienceHint,
		},
	}, nil
}
