// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/application/usecase/taxonomy"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
	"github.com/household-ledger/backend/internal/integration/entrypoint/dto"
	"github.com/household-ledger/backend/internal/integration/entrypoint/middleware"
)

// GroupController handles the read endpoints of a group's ledger data.
type GroupController struct {
	listTaxonomyUseCase *taxonomy.ListGroupTaxonomyUseCase
}

// NewGroupController creates a new group controller instance.
func NewGroupController(listTaxonomyUseCase *taxonomy.ListGroupTaxonomyUseCase) *GroupController {
	return &GroupController{
		listTaxonomyUseCase: listTaxonomyUseCase,
	}
}

// ListCategories handles GET /groups/:id/categories requests.
func (c *GroupController) ListCategories(ctx *gin.Context) {
	c.listTaxonomy(ctx, entity.NodeKindCategory)
}

// ListPaymentMethods handles GET /groups/:id/payment-methods requests.
func (c *GroupController) ListPaymentMethods(ctx *gin.Context) {
	c.listTaxonomy(ctx, entity.NodeKindPaymentMethod)
}

func (c *GroupController) listTaxonomy(ctx *gin.Context, kind entity.NodeKind) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Unauthorized",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return
	}

	groupID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid group ID format",
			Code:  string(domainerror.ErrCodeInvalidGroupID),
		})
		return
	}

	output, err := c.listTaxonomyUseCase.Execute(ctx.Request.Context(), taxonomy.ListGroupTaxonomyInput{
		Kind:    kind,
		GroupID: groupID,
		UserID:  userID,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTaxonomyTreeResponse(output))
}
