package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "gastos/internal/errors"
	"gastos/internal/models"
	"gastos/internal/money"
	"gastos/internal/services"
	"gastos/internal/uuid"
)

// MovementHandler handles movement-related requests.
type MovementHandler struct {
	movementService services.MovementServicer
	auditService    services.AuditServicer
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementService services.MovementServicer, auditService services.AuditServicer) *MovementHandler {
	return &MovementHandler{movementService: movementService, auditService: auditService}
}

// CreateMovementRequest represents the request payload for creating a movement.
type CreateMovementRequest struct {
	Amount      *money.Amount       `json:"amount" binding:"required"`
	Type        models.MovementType `json:"type" binding:"required,movement_type"`
	Date        string              `json:"date" binding:"required"`
	Description string              `json:"description" binding:"max=1000"`
	CategoryID  string              `json:"category_id" binding:"required"`
}

// UpdateMovementRequest represents a partial movement update. The owner is not
// part of the payload and never changes.
type UpdateMovementRequest struct {
	Amount      *money.Amount        `json:"amount"`
	Type        *models.MovementType `json:"type" binding:"omitempty,movement_type"`
	Date        *string              `json:"date"`
	Description *string              `json:"description" binding:"omitempty,max=1000"`
	CategoryID  *string              `json:"category_id"`
}

// CreateMovement records a movement for the caller
// @Summary     Create a movement
// @Description The category must be one of the caller's or a global one
// @Tags        movements
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateMovementRequest true "Movement details"
// @Success     201 {object} MovementResponse "Movement created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /movements [post]
func (h *MovementHandler) CreateMovement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateMovementRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	movement, err := h.movementService.CreateMovement(userID, services.MovementInput{
		Amount:      *req.Amount,
		Type:        req.Type,
		Date:        date,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEntry{
		UserID:    userID,
		Action:    services.ActionCreateMovement,
		IPAddress: c.ClientIP(),
		Resource:  services.MovementResource(movement),
	})

	c.JSON(http.StatusCreated, newMovementResponse(movement))
}

// ListMovements lists the caller's movements
// @Summary     List movements
// @Description Newest first. Date bounds are inclusive.
// @Tags        movements
// @Produce     json
// @Security    BearerAuth
// @Param       start    query string false "From date (YYYY-MM-DD)"
// @Param       end      query string false "To date (YYYY-MM-DD)"
// @Param       category query string false "Category ID"
// @Param       type     query string false "INCOME or EXPENSE"
// @Success     200 {array}  MovementResponse "Movements"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /movements [get]
func (h *MovementHandler) ListMovements(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := movementFilterFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	movements, err := h.movementService.ListMovements(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		out = append(out, newMovementResponse(&movements[i]))
	}
	c.JSON(http.StatusOK, out)
}

func movementFilterFromQuery(c *gin.Context) (services.MovementFilter, error) {
	var filter services.MovementFilter

	start, err := parseDateQuery(c, "start")
	if err != nil {
		return filter, err
	}
	end, err := parseDateQuery(c, "end")
	if err != nil {
		return filter, err
	}
	filter.Start, filter.End = start, end

	if v := c.Query("category"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperrors.WithField(apperrors.ErrInvalidInput, "category", "ID de categoría inválido.")
		}
		filter.CategoryID = &id
	}

	if v := c.Query("type"); v != "" {
		t := models.MovementType(v)
		if !t.Valid() {
			return filter, apperrors.WithField(apperrors.ErrInvalidMovementType, "type", apperrors.ErrInvalidMovementType.Message)
		}
		filter.Type = &t
	}

	return filter, nil
}

// GetMovement returns one of the caller's movements
// @Summary     Get movement by ID
// @Tags        movements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Movement ID"
// @Success     200 {object} MovementResponse "Movement"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Movement not found"
// @Router      /movements/{id} [get]
func (h *MovementHandler) GetMovement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	movementID, err := parsePathID(c, "id", apperrors.ErrMovementNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	movement, err := h.movementService.GetMovementByID(userID, movementID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newMovementResponse(movement))
}

// UpdateMovement updates one of the caller's movements
// @Summary     Update movement
// @Tags        movements
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Movement ID"
// @Param       request body UpdateMovementRequest true "Fields to change"
// @Success     200 {object} MovementResponse "Updated movement"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Movement not found"
// @Router      /movements/{id} [put]
func (h *MovementHandler) UpdateMovement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	movementID, err := parsePathID(c, "id", apperrors.ErrMovementNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMovementRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	update := services.MovementUpdate{
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if req.Date != nil {
		date, err := parseDate("date", *req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		update.Date = &date
	}

	movement, err := h.movementService.UpdateMovement(userID, movementID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEntry{
		UserID:    userID,
		Action:    services.ActionUpdateMovement,
		IPAddress: c.ClientIP(),
		Resource:  services.MovementResource(movement),
	})

	c.JSON(http.StatusOK, newMovementResponse(movement))
}

// DeleteMovement deletes one of the caller's movements
// @Summary     Delete movement
// @Tags        movements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Movement ID"
// @Success     204 "Movement deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Movement not found"
// @Router      /movements/{id} [delete]
func (h *MovementHandler) DeleteMovement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	movementID, err := parsePathID(c, "id", apperrors.ErrMovementNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.movementService.DeleteMovement(userID, movementID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEntry{
		UserID:    userID,
		Action:    services.ActionDeleteMovement,
		IPAddress: c.ClientIP(),
		Resource:  services.DeletedResource("movement", movementID),
	})

	c.Status(http.StatusNoContent)
}
