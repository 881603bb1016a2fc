package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pravaha-app/expense_backend/internal/apperrors"
	"github.com/pravaha-app/expense_backend/internal/core/domain"
	portssvc "github.com/pravaha-app/expense_backend/internal/core/ports/services"
	"github.com/pravaha-app/expense_backend/internal/dto"
	"github.com/pravaha-app/expense_backend/internal/middleware"
)

// expenseHandler handles HTTP requests related to expense claims.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

func newExpenseHandler(es portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{
		expenseService: es,
	}
}

// registerExpenseRoutes registers all expense-related routes.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.submitExpense)
		expenses.GET("", h.listExpenses)
		expenses.GET("/pending", h.listPending)           // Manager or admin
		expenses.POST("/reconcile", h.reconcile)          // Admin only
		expenses.GET("/:expenseID", h.getExpense)         // Owner, manager or admin
		expenses.POST("/:expenseID/decision", h.decide)   // Manager or admin
	}
}

// submitExpense godoc
// @Summary Submit an expense claim
// @Description Creates a new Pending expense for the requester. The amount is converted to the company base currency; if the conversion service is unavailable the expense is still created and reconciled later.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expense body dto.SubmitExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse "Invalid amount, currency or category"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /expenses [post]
func (h *expenseHandler) submitExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SubmitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for submit expense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	requester, ok := middleware.GetRequesterFromContext(c)
	if !ok {
		logger.Error("Requester not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, err := h.expenseService.SubmitExpense(c.Request.Context(), requester, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidAmount),
			errors.Is(err, apperrors.ErrInvalidCurrency),
			errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to submit expense", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to submit expense"})
		}
		return
	}

	logger.Info("Expense submitted", slog.String("expense_id", expense.ExpenseID))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// listExpenses godoc
// @Summary List expenses
// @Description Lists a user's expenses, newest first. Without a userID query it lists the requester's own expenses; with one it requires owner, manager or admin visibility.
// @Tags expenses
// @Produce  json
// @Param   userID query string false "User whose expenses to list (defaults to the requester)"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	requester, ok := middleware.GetRequesterFromContext(c)
	if !ok {
		logger.Error("Requester not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	targetUserID := params.UserID
	if targetUserID == "" {
		targetUserID = requester.UserID
	}

	expenses, err := h.expenseService.ListUserExpenses(c.Request.Context(), requester, targetUserID, params.Limit, params.Offset)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
		default:
			logger.Error("Failed to list expenses", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list expenses"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListExpensesResponse(expenses))
}

// listPending godoc
// @Summary List pending expenses
// @Description Lists Pending expenses visible to the requester: all company expenses for an Admin, direct reports' expenses for a Manager.
// @Tags expenses
// @Produce  json
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /expenses/pending [get]
func (h *expenseHandler) listPending(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requester, ok := middleware.GetRequesterFromContext(c)
	if !ok {
		logger.Error("Requester not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expenses, err := h.expenseService.ListPending(c.Request.Context(), requester)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only managers and admins can review pending expenses"})
			return
		}
		logger.Error("Failed to list pending expenses", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list pending expenses"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListExpensesResponse(expenses))
}

// getExpense godoc
// @Summary Get an expense by ID
// @Description Retrieves a single expense, visible to its owner, the owner's manager or a company Admin.
// @Tags expenses
// @Produce  json
// @Param   expenseID path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Expense not found"
// @Security BearerAuth
// @Router /expenses/{expenseID} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("expenseID")

	requester, ok := middleware.GetRequesterFromContext(c)
	if !ok {
		logger.Error("Requester not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, err := h.expenseService.GetExpense(c.Request.Context(), requester, expenseID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Expense not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to get expense", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve expense"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// decide godoc
// @Summary Approve or reject an expense
// @Description Moves a Pending expense to Approved or Rejected. Permitted for a company Admin or the manager assigned to the expense owner. Exactly one of two concurrent decisions wins.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expenseID path string true "Expense ID"
// @Param   decision body dto.DecisionRequest true "Decision"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse "Invalid decision"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Expense not found"
// @Failure 409 {object} ErrorResponse "Expense already decided"
// @Security BearerAuth
// @Router /expenses/{expenseID}/decision [post]
func (h *expenseHandler) decide(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("expenseID")

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	requester, ok := middleware.GetRequesterFromContext(c)
	if !ok {
		logger.Error("Requester not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, err := h.expenseService.Decide(c.Request.Context(), requester, expenseID, domain.ExpenseStatus(req.Decision))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Expense not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Not permitted to decide this expense"})
		case errors.Is(err, apperrors.ErrAlreadyDecided):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Expense already decided"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to decide expense", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to decide expense"})
		}
		return
	}

	logger.Info("Expense decided", slog.String("expense_id", expenseID), slog.String("decision", req.Decision))
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// reconcile godoc
// @Summary Reconcile missing base amounts
// @Description Retries base-currency conversion for company expenses submitted while the conversion service was unavailable (Admin only).
// @Tags expenses
// @Produce  json
// @Success 200 {object} map[string]int
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /expenses/reconcile [post]
func (h *expenseHandler) reconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requester, ok := middleware.GetRequesterFromContext(c)
	if !ok {
		logger.Error("Requester not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	count, err := h.expenseService.ReconcileBaseAmounts(c.Request.Context(), requester)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only admins can reconcile expenses"})
			return
		}
		logger.Error("Failed to reconcile expenses", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to reconcile expenses"})
		return
	}

	logger.Info("Expenses reconciled", slog.Int("count", count))
	c.JSON(http.StatusOK, gin.H{"reconciled": count})
}
