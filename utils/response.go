package utils

import "github.com/gin-gonic/gin"

// Error codes surfaced to API callers.
const (
	CodeAuthFailed       = "AUTH_FAILED"
	CodeForbidden        = "FORBIDDEN"
	CodeInvalidPayload   = "INVALID_PAYLOAD"
	CodeDuplicateBooking = "DUPLICATE_BOOKING"
	CodeDuplicate        = "DUPLICATE"
	CodeNotFound         = "NOT_FOUND"
	CodeServerError      = "SERVER_ERROR"
)

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func JSONMessage(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, gin.H{"success": true, "data": data, "message": message})
}

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

func JSONCodedError(c *gin.Context, code int, message, errCode string) {
	c.JSON(code, gin.H{"success": false, "error": message, "code": errCode})
}
