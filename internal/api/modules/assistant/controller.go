package assistant

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
	assistantpkg "github.com/ethanbaker/office-assistant/internal/assistant"
	"github.com/ethanbaker/office-assistant/internal/stores/session"
	"github.com/ethanbaker/office-assistant/pkg/sdk"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nlpodyssey/openai-agents-go/memory"
)

// DefaultChannel names sessions opened without an explicit channel
const DefaultChannel = "api"

// Responder answers one user turn of a session
type Responder interface {
	Respond(ctx context.Context, session memory.Session, input string) (string, error)
}

type controller struct {
	responder Responder
	sessions  session.Store
}

// createSession handles POST requests to create a new session
func (ctrl *controller) createSession(c *gin.Context) {
	var req sdk.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
		return
	}
	if req.Channel == "" {
		req.Channel = DefaultChannel
	}

	sess, err := ctrl.sessions.CreateSession(c.Request.Context(), req.Channel)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to create session", err).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Session created successfully", sdk.Session{
		ID:       sess.ID().String(),
		Channel:  sess.Channel(),
		Greeting: assistantpkg.Greeting,
	}).AsGinResponse())
}

// postMessage handles POST requests sending a user turn to an existing session
func (ctrl *controller) postMessage(c *gin.Context) {
	sess, ok := ctrl.lookup(c)
	if !ok {
		return
	}

	var req sdk.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
		return
	}

	reply, err := ctrl.responder.Respond(c.Request.Context(), sess, req.Content)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(apperrors.HTTPStatus(err), "Assistant failed to respond", err).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Message sent successfully", sdk.PostMessageResponse{
		FinalOutput: reply,
	}).AsGinResponse())
}

// deleteSession handles DELETE requests to remove an existing session
func (ctrl *controller) deleteSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(sdk.NewFailResponse(http.StatusBadRequest, "Invalid session id").AsGinResponse())
		return
	}

	if err := ctrl.sessions.DeleteSession(c.Request.Context(), id); errors.Is(err, session.ErrNotFound) {
		c.JSON(sdk.NewFailResponse(http.StatusNotFound, "Session not found").AsGinResponse())
		return
	} else if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to delete session", err).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse[any]("Session deleted successfully", nil).AsGinResponse())
}

// lookup resolves the :uuid parameter, writing the failure response itself
func (ctrl *controller) lookup(c *gin.Context) (session.Session, bool) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(sdk.NewFailResponse(http.StatusBadRequest, "Invalid session id").AsGinResponse())
		return nil, false
	}

	sess, err := ctrl.sessions.GetSession(c.Request.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(sdk.NewFailResponse(http.StatusNotFound, "Session not found").AsGinResponse())
		return nil, false
	} else if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to get session", err).AsGinResponse())
		return nil, false
	}

	return sess, true
}
