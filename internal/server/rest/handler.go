package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/sessiongate/internal/common"
	"github.com/gin-gonic/gin"
)

const (
	msgBadBody            = "invalid request body"
	msgValidation         = "username and password are required"
	msgAdminSecret        = "invalid admin secret"
	msgConflict           = "username already exists"
	msgInvalidCredentials = "invalid username or password"
	msgInvalidToken       = "invalid or expired token"
	msgInternal           = "internal server error"
)

func (s *HTTPServer) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgBadBody})
		return
	}

	id, err := s.sessions.Register(c.Request.Context(), req.Username, req.Password, req.AdminSecret)
	if err != nil {
		s.writeError(c, err, msgAdminSecret)
		return
	}

	c.JSON(http.StatusCreated, signUpResponse{Message: "user registered", UserID: id})
}

func (s *HTTPServer) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgBadBody})
		return
	}

	session, err := s.sessions.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err, msgInvalidCredentials)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Token: session.Token, User: session.Account})
}

func (s *HTTPServer) verifyToken(c *gin.Context) {
	session, err := s.sessions.Verify(c.Request.Context(), bearerFrom(c))
	if err != nil {
		s.writeError(c, err, msgInvalidToken)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Token: session.Token, User: session.Account})
}

func (s *HTTPServer) logout(c *gin.Context) {
	if err := s.sessions.Terminate(c.Request.Context(), bearerFrom(c)); err != nil {
		s.writeError(c, err, msgInvalidToken)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// writeError maps a session error onto a response. Every 401 on a route
// uses that route's unauthorizedMsg, so stale and invalid tokens look alike.
func (s *HTTPServer) writeError(c *gin.Context, err error, unauthorizedMsg string) {
	status := errorStatus(err)

	msg := unauthorizedMsg
	switch status {
	case http.StatusBadRequest:
		msg = msgValidation
	case http.StatusConflict:
		msg = msgConflict
	case http.StatusInternalServerError:
		msg = msgInternal
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}

	c.JSON(status, errorResponse{Error: msg})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrStaleSession),
		errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
