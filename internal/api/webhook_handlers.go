package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/rhedu/adstudio-server/internal/errors"
	"github.com/rhedu/adstudio-server/internal/id"
	"github.com/rhedu/adstudio-server/internal/logger"
)

const invalidWebhookPayload = "Invalid payload: missing options array"

func (s *Server) registerWebhookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "receiveMakeWebhook",
		Method:      http.MethodPost,
		Path:        "/api/make/webhook",
		Summary:     "Receive automation results",
		Description: "Accepts generated options posted back by the automation workflow. Payloads are acknowledged and logged, not stored.",
		Tags:        []string{"Webhooks"},
	}, s.handleMakeWebhook)
}

// MakeWebhookInput takes the raw body so a malformed payload is a plain 400.
type MakeWebhookInput struct {
	RawBody []byte
}

// makeWebhookPayload is the part of the payload the endpoint inspects.
// jobId is only logged, so any JSON value is accepted.
type makeWebhookPayload struct {
	JobID   json.RawMessage   `json:"jobId"`
	Options []json.RawMessage `json:"options"`
}

// MakeWebhookResponse acknowledges receipt.
type MakeWebhookResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ReceiptID string `json:"receipt_id" doc:"Identifier to correlate the payload in logs"`
}

// MakeWebhookOutput wraps the acknowledgment for Huma.
type MakeWebhookOutput struct {
	Body MakeWebhookResponse
}

func (s *Server) handleMakeWebhook(ctx context.Context, input *MakeWebhookInput) (*MakeWebhookOutput, error) {
	log := logger.FromContext(ctx)

	var payload makeWebhookPayload
	if err := json.Unmarshal(input.RawBody, &payload); err != nil || payload.Options == nil {
		log.Warn("Rejected webhook payload", "bytes", len(input.RawBody), "error", err)
		return nil, fromDomain(domainerrors.Validation(invalidWebhookPayload))
	}

	receiptID, err := id.Generate(id.PrefixReceipt)
	if err != nil {
		return nil, fromDomain(domainerrors.Internal("failed to process webhook"))
	}

	log.Info("Received automation webhook",
		"receipt_id", receiptID,
		"job_id", string(payload.JobID),
		"options", len(payload.Options),
	)

	return &MakeWebhookOutput{
		Body: MakeWebhookResponse{
			Success:   true,
			Message:   "Webhook received",
			ReceiptID: receiptID,
		},
	}, nil
}
