package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"procure-dispatch-api-server/internal/procurement"
)

// respondEngineError maps a typed engine error to its HTTP status and a
// structured body so clients can branch on the code and render which item or
// status went wrong.
func respondEngineError(c *gin.Context, err error) {
	var pe *procurement.Error
	if !errors.As(err, &pe) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusBadRequest
	switch pe.Code {
	case procurement.CodeNotFound:
		status = http.StatusNotFound
	case procurement.CodeStaleState, procurement.CodeConflictingQuotation, procurement.CodeInvalidTransition:
		status = http.StatusConflict
	}

	body := gin.H{"error": pe.Error(), "code": pe.Code}
	if pe.RequestID != "" {
		body["requestID"] = pe.RequestID
	}
	if pe.Item != "" {
		body["item"] = pe.Item
	}
	if pe.Status != "" {
		body["status"] = pe.Status
	}
	if len(pe.Expected) > 0 {
		body["expected"] = pe.Expected
	}
	c.JSON(status, body)
}
