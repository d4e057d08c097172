package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"payflow-backend/internal/domains/payment/model"
)

// Error codes on the wire.
const (
	CodeWebhookError    = "webhook_error"
	CodeValidationError = "validation_error"
	CodeInternalError   = "internal_error"
)

// ErrorBody is the error envelope webhook callers receive.
type ErrorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// Ack writes the 200 acknowledgement for one processed delivery.
func Ack(c *gin.Context, status model.WebhookAck) {
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// FromError maps an error's kind onto the wire. Signature failures are 400
// with a fixed message, validation failures 422 with the cause. Database,
// serialization, and provider errors reach callers only as a generic 500;
// the details go to the log.
func FromError(c *gin.Context, err error) {
	switch model.KindOf(err) {
	case model.ErrKindWebhookSignature:
		c.JSON(http.StatusBadRequest, ErrorBody{
			ErrorCode: CodeWebhookError,
			Message:   "invalid webhook signature",
		})
	case model.ErrKindValidation:
		c.JSON(http.StatusUnprocessableEntity, ErrorBody{
			ErrorCode: CodeValidationError,
			Message:   err.Error(),
		})
	default:
		log.Error().Err(err).Msg("internal error")
		c.JSON(http.StatusInternalServerError, ErrorBody{
			ErrorCode: CodeInternalError,
			Message:   "internal error",
		})
	}
}
