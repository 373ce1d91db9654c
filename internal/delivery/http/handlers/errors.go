package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/aliskhannn/quizroom/internal/delivery/http/middleware"
	"github.com/aliskhannn/quizroom/internal/delivery/http/response"
	"github.com/aliskhannn/quizroom/internal/domain/entities"
	"github.com/aliskhannn/quizroom/internal/service"
)

var validate = validator.New()

// bindJSON decodes and validates the request body. It writes the error
// response itself and reports whether the handler may continue.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	if err := validate.Struct(req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_failed", err)
		return false
	}
	return true
}

// caller returns the authenticated identity or writes 401.
func caller(c *gin.Context) (entities.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
	}
	return identity, ok
}

// respondServiceError maps domain errors to status codes and error codes.
func respondServiceError(c *gin.Context, err error) {
	var (
		parseErr *service.DraftParseError
		shapeErr *service.DraftValidationError
	)

	switch {
	case errors.Is(err, service.ErrTestNotFound), errors.Is(err, service.ErrAttemptNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrFederatedToken):
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, service.ErrEmailTaken):
		response.RespondError(c, http.StatusConflict, "email_taken", err)
	case errors.Is(err, service.ErrAccountLinked):
		response.RespondError(c, http.StatusConflict, "account_linked", err)
	case errors.Is(err, service.ErrUnansweredQuestions):
		response.RespondError(c, http.StatusConflict, "unanswered_questions", err)
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.RespondError(c, http.StatusConflict, "already_submitted", err)
	case service.IsAttemptConflict(err):
		response.RespondError(c, http.StatusConflict, "attempt_closed", err)
	case errors.Is(err, entities.ErrDraftIncomplete):
		response.RespondError(c, http.StatusUnprocessableEntity, "draft_incomplete", err)
	case errors.As(err, &parseErr), errors.As(err, &shapeErr), errors.Is(err, service.ErrEmptyDraftBatch):
		response.RespondError(c, http.StatusBadGateway, "invalid_generated_questions", err)
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidDraftRequest),
		errors.Is(err, service.ErrMissingAPIKey),
		errors.Is(err, entities.ErrQuestionPosition),
		errors.Is(err, entities.ErrOptionPosition),
		errors.Is(err, entities.ErrInvalidOptionList),
		errors.Is(err, entities.ErrCorrectAnswerIndex):
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, service.ErrGenerationFailed):
		response.RespondError(c, http.StatusBadGateway, "generation_failed", err)
	case errors.Is(err, service.ErrFederatedDisabled):
		response.RespondError(c, http.StatusNotImplemented, "not_configured", err)
	case errors.Is(err, service.ErrStoreWrite):
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, "store_error", err)
	default:
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
	}
}
