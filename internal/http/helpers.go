package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/database/books"
)

// ErrorResponse is the standard error envelope for all API errors.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Client-facing messages.
const (
	msgInvalidJSON    = "Invalid JSON"
	msgFieldsRequired = "Title and author are required"
	msgFieldsTooLong  = "Title and author must be at most 255 characters"
	msgNotFound       = "Not found."
	msgDeleted        = "Deleted"
	msgInternalError  = "Internal server error"
)

const contextKeyBookID = "book_id"

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Detail: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Detail: msgNotFound})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: msgInternalError})
}

// respondMethodNotAllowed returns a handler answering 405 with an Allow header.
func respondMethodNotAllowed(allowed string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Allow", allowed)
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, ErrorResponse{
			Detail: `Method "` + c.Request.Method + `" not allowed.`,
		})
	}
}

// requireBookID parses the :id path parameter as an unsigned integer.
// A non-numeric id behaves like an unknown route: onInvalid answers it.
func requireBookID(onInvalid gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			onInvalid(c)
			c.Abort()
			return
		}
		c.Set(contextKeyBookID, uint(id))
		c.Next()
	}
}

// bookID returns the id stored by requireBookID.
func bookID(c *gin.Context) uint {
	return c.GetUint(contextKeyBookID)
}

// invalidBookMessage maps a store validation error to a client message.
func invalidBookMessage(err error) string {
	if errors.Is(err, books.ErrFieldTooLong) {
		return msgFieldsTooLong
	}
	return msgFieldsRequired
}
