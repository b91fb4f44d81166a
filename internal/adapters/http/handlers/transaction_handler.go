package handlers

import (
	"strconv"
	"time"

	"finance-backoffice/internal/adapters/http/middleware"
	"finance-backoffice/internal/core/domain"
	"finance-backoffice/internal/core/services"
	"finance-backoffice/internal/pkg/pagination"
	"finance-backoffice/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler handles transaction endpoints
type TransactionHandler struct {
	transactionService *services.TransactionService
	defaultPageSize    int
	maxPageSize        int
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *services.TransactionService, defaultPageSize, maxPageSize int) *TransactionHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = pagination.DefaultSize
	}
	return &TransactionHandler{
		transactionService: transactionService,
		defaultPageSize:    defaultPageSize,
		maxPageSize:        maxPageSize,
	}
}

// TransactionRequest is the writable part of a transaction. Ids and audit
// fields are assigned by the server.
type TransactionRequest struct {
	Reference       string     `json:"reference"`
	Status          string     `json:"status"`
	Type            string     `json:"type"`
	Amount          float64    `json:"amount"`
	Currency        string     `json:"currency"`
	FromAccount     string     `json:"fromAccount"`
	ToAccount       string     `json:"toAccount"`
	Description     string     `json:"description"`
	TransactionDate *time.Time `json:"transactionDate"`
}

func (r TransactionRequest) toDomain() *domain.Transaction {
	tx := &domain.Transaction{
		Reference:   r.Reference,
		Status:      domain.TransactionStatus(r.Status),
		Type:        r.Type,
		Amount:      r.Amount,
		Currency:    r.Currency,
		FromAccount: r.FromAccount,
		ToAccount:   r.ToAccount,
		Description: r.Description,
	}
	if r.TransactionDate != nil {
		tx.TransactionDate = *r.TransactionDate
	}
	return tx
}

// ListTransactions returns a page of transactions
// @Summary List transactions
// @Description Zero-based pages ordered by id. An unknown status yields an empty page.
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page index (0-based)"
// @Param size query int false "Page size"
// @Param status query string false "Exact status filter"
// @Success 200 {object} pagination.Page[domain.Transaction]
// @Failure 400 {object} response.Message
// @Failure 401 {object} response.Message
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	req, err := pagination.ParseRequest(c.Query("page"), c.Query("size"), h.defaultPageSize, h.maxPageSize)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	page, err := h.transactionService.List(
		c.Context(),
		middleware.CurrentPrincipal(c),
		domain.ParseStatusFilter(c.Query("status")),
		req,
	)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, page)
}

// GetTransaction returns a single transaction
// @Summary Get transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} domain.Transaction
// @Failure 404 {object} response.Message
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid transaction id")
	}

	tx, err := h.transactionService.FindByID(c.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, tx)
}

// CreateTransaction creates a transaction
// @Summary Create transaction
// @Description Any id in the body is ignored. Missing status defaults to PENDING.
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TransactionRequest true "Transaction"
// @Success 200 {object} domain.Transaction
// @Failure 400 {object} response.Message
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var req TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, msgInvalidBody)
	}

	tx, err := h.transactionService.Create(c.Context(), middleware.CurrentPrincipal(c), req.toDomain())
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, tx)
}

// UpdateTransaction replaces a transaction
// @Summary Update transaction
// @Description The id is taken from the path (Admin only)
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param body body TransactionRequest true "Transaction"
// @Success 200 {object} domain.Transaction
// @Failure 400 {object} response.Message
// @Failure 403 {object} response.Message
// @Failure 404 {object} response.Message
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid transaction id")
	}

	var req TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, msgInvalidBody)
	}

	tx, err := h.transactionService.Update(c.Context(), middleware.CurrentPrincipal(c), id, req.toDomain())
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, tx)
}

// DeleteTransaction deletes a transaction
// @Summary Delete transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Message
// @Failure 404 {object} response.Message
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid transaction id")
	}

	if err := h.transactionService.DeleteByID(c.Context(), middleware.CurrentPrincipal(c), id); err != nil {
		return writeError(c, err)
	}
	return response.OK(c, "Transaction deleted successfully")
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}
