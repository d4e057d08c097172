package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"payflow-backend/internal/domains/payment/model"
	"payflow-backend/internal/domains/payment/service"
	"payflow-backend/internal/shared/response"
)

type WebhookHandler struct {
	webhookService service.WebhookService
}

// NewWebhookHandler creates new webhook handler
func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// HandleStripeWebhook ingests one provider delivery
// POST /webhook
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// Step 1: Read the exact bytes; the signature covers them verbatim.
	// The body limit middleware makes this read fail on oversized payloads.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.FromError(c, model.NewWebhookSignatureError(err))
		return
	}

	// Step 2: Verify, classify, and route
	ack, err := h.webhookService.ProcessWebhook(c.Request.Context(), body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	// Step 3: Acknowledge
	response.Ack(c, ack)
}
