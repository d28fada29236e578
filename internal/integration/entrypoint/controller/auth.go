// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/application/usecase/provisioning"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
	"github.com/household-ledger/backend/internal/integration/entrypoint/dto"
	"github.com/household-ledger/backend/internal/integration/entrypoint/middleware"
)

// AuthController handles the initialization triggers fired once the identity
// provider has established a session.
type AuthController struct {
	provisionUseCase *provisioning.ProvisionUserUseCase
	repairUseCase    *provisioning.RepairUserDataUseCase
}

// NewAuthController creates a new auth controller instance.
func NewAuthController(
	provisionUseCase *provisioning.ProvisionUserUseCase,
	repairUseCase *provisioning.RepairUserDataUseCase,
) *AuthController {
	return &AuthController{
		provisionUseCase: provisionUseCase,
		repairUseCase:    repairUseCase,
	}
}

// Initialize handles POST /auth/initialize requests.
// It is fired by the sign-in callback and returns 201 the first time.
func (c *AuthController) Initialize(ctx *gin.Context) {
	output, ok := c.provision(ctx)
	if !ok {
		return
	}

	status := http.StatusOK
	if output.Status == provisioning.StatusCreated {
		status = http.StatusCreated
	}
	ctx.JSON(status, dto.ToSessionResponse(output))
}

// Me handles GET /me requests.
// Clients call it when a session is restored; a missing account is
// provisioned on the way.
func (c *AuthController) Me(ctx *gin.Context) {
	output, ok := c.provision(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, dto.ToSessionResponse(output))
}

// Repair handles POST /auth/repair requests.
func (c *AuthController) Repair(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Unauthorized",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return
	}

	var req dto.RepairRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Invalid request body",
				Code:    string(domainerror.ErrCodeInvalidGroupID),
				Details: err.Error(),
			})
			return
		}
	}

	input := provisioning.RepairUserDataInput{UserID: userID}
	if req.GroupID != "" {
		groupID, err := uuid.Parse(req.GroupID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid group ID format",
				Code:  string(domainerror.ErrCodeInvalidGroupID),
			})
			return
		}
		input.GroupID = groupID
	}

	output, err := c.repairUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRepairResponse(output))
}

func (c *AuthController) provision(ctx *gin.Context) (*provisioning.ProvisionUserOutput, bool) {
	profile, ok := middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Unauthorized",
			Code:  string(domainerror.ErrCodeNotAuthenticated),
		})
		return nil, false
	}

	output, err := c.provisionUseCase.Execute(ctx.Request.Context(), *profile)
	if err != nil {
		handleError(ctx, err)
		return nil, false
	}
	return output, true
}

// handleError maps domain errors to HTTP responses.
func handleError(ctx *gin.Context, err error) {
	var provErr *domainerror.ProvisioningError
	if errors.As(err, &provErr) {
		ctx.JSON(getStatusCodeForProvisioningError(provErr.Code), dto.ErrorResponse{
			Error:     provErr.Message,
			Code:      string(provErr.Code),
			Retryable: isRetryable(provErr.Code),
		})
		return
	}

	var groupErr *domainerror.GroupError
	if errors.As(err, &groupErr) {
		ctx.JSON(getStatusCodeForGroupError(groupErr.Code), dto.ErrorResponse{
			Error: groupErr.Message,
			Code:  string(groupErr.Code),
		})
		return
	}

	var authErr *domainerror.AuthError
	if errors.As(err, &authErr) {
		ctx.JSON(getStatusCodeForAuthError(authErr.Code), dto.ErrorResponse{
			Error: authErr.Message,
			Code:  string(authErr.Code),
		})
		return
	}

	switch {
	case errors.Is(err, domainerror.ErrUserNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "User not found",
			Code:  string(domainerror.ErrCodeUserNotFound),
		})
	case errors.Is(err, domainerror.ErrInvalidNodeKind):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Unknown taxonomy kind",
		})
	default:
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
		})
	}
}

// getStatusCodeForProvisioningError maps provisioning error codes to HTTP status codes.
func getStatusCodeForProvisioningError(code domainerror.ProvisioningErrorCode) int {
	switch code {
	case domainerror.ErrCodeNotAuthenticated:
		return http.StatusUnauthorized
	case domainerror.ErrCodeInvalidIdentity:
		return http.StatusBadRequest
	case domainerror.ErrCodeConstraintViolation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func isRetryable(code domainerror.ProvisioningErrorCode) bool {
	switch code {
	case domainerror.ErrCodeProvisioningFatal,
		domainerror.ErrCodeCopyFailed,
		domainerror.ErrCodeSeedFailed:
		return true
	default:
		return false
	}
}

// getStatusCodeForGroupError maps group error codes to HTTP status codes.
func getStatusCodeForGroupError(code domainerror.GroupErrorCode) int {
	switch code {
	case domainerror.ErrCodeGroupNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeNotGroupMember:
		return http.StatusForbidden
	case domainerror.ErrCodeInvalidGroupID:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// getStatusCodeForAuthError maps auth error codes to HTTP status codes.
func getStatusCodeForAuthError(code domainerror.AuthErrorCode) int {
	switch code {
	case domainerror.ErrCodeInvalidToken,
		domainerror.ErrCodeExpiredToken,
		domainerror.ErrCodeMissingToken:
		return http.StatusUnauthorized
	case domainerror.ErrCodeUserNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case domainerror.ErrCodeInvalidEmail,
		domainerror.ErrCodeMissingFields:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
