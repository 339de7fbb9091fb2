package sdk

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ethanbaker/api/pkg/api_types"
)

// ApiResponse represents a standard API response structure
type ApiResponse[T any] struct {
	Status  api_types.StatusType `json:"status"`          // Status message
	Code    int                  `json:"code"`            // Status code
	Message string               `json:"message"`         // Human-readable message
	Data    T                    `json:"data,omitempty"`  // Optional data field for successful responses
	Error   any                  `json:"error,omitempty"` // Optional errors field for error responses
}

// AsGinResponse converts the ApiResponse to a format suitable for Gin framework
func (r ApiResponse[T]) AsGinResponse() (int, any) {
	return r.Code, r
}

// AsJSON converts the ApiResponse to a format suitable for JSON responses
func (r ApiResponse[T]) AsJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func NewSuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Status:  api_types.StatusSuccess,
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	}
}

// NewFailResponse reports a request the caller got wrong
func NewFailResponse(code int, message string) ApiResponse[any] {
	return ApiResponse[any]{
		Status:  api_types.StatusFail,
		Code:    code,
		Message: message,
	}
}

func NewErrorResponse(code int, message string, err error) ApiResponse[any] {
	resp := ApiResponse[any]{
		Status:  api_types.StatusError,
		Code:    code,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

/** Actions */

// Action describes one capability the assistant can perform
type Action struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// InvokeActionResponse carries the result of a direct action invocation
type InvokeActionResponse struct {
	Action string `json:"action"`
	Result any    `json:"result"`
}

/** Customers */

// Customer is a stored customer record
type Customer struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

/** Assistant */

// CreateSessionRequest represents the request body for creating a new session
type CreateSessionRequest struct {
	Channel string `json:"channel"`
}

// Session represents a conversation with the assistant
type Session struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"created_at"`
	Greeting  string    `json:"greeting,omitempty"`
}

// PostMessageRequest represents the request body for adding a message to a session
type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// PostMessageResponse represents the response body after adding a message to a session
type PostMessageResponse struct {
	FinalOutput string `json:"final_output"`
}
