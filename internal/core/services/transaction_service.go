package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finance-backoffice/internal/core/access"
	"finance-backoffice/internal/core/domain"
	"finance-backoffice/internal/pkg/pagination"
	"finance-backoffice/internal/pkg/reference"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// DefaultCurrency is used when neither caller nor config names one
const DefaultCurrency = "USD"

// TransactionConfig holds query and defaulting settings
type TransactionConfig struct {
	DefaultCurrency string
	MaxPageSize     int
}

// TransactionService resolves gated, paginated views over transactions and
// forwards mutations to the store.
type TransactionService struct {
	store    TransactionStore
	gate     *access.Gate
	cfg      TransactionConfig
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

// NewTransactionService creates a new transaction service
func NewTransactionService(store TransactionStore, gate *access.Gate, cfg TransactionConfig, log *zap.Logger) *TransactionService {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = DefaultCurrency
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = pagination.MaxSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TransactionService{
		store:    store,
		gate:     gate,
		cfg:      cfg,
		validate: newValidator(),
		log:      log.Named("transactions"),
		now:      time.Now,
	}
}

// transactionRules mirrors the validated subset of a transaction
type transactionRules struct {
	Status      string  `json:"status" validate:"oneof=PENDING COMPLETED FAILED CANCELLED"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Currency    string  `json:"currency" validate:"len=3,alpha,uppercase"`
	Type        string  `json:"type" validate:"max=50"`
	FromAccount string  `json:"fromAccount" validate:"max=64"`
	ToAccount   string  `json:"toAccount" validate:"max=64"`
	Description string  `json:"description" validate:"max=255"`
	Reference   string  `json:"reference" validate:"max=64"`
}

// FindAll returns one page of all transactions ordered by id
func (s *TransactionService) FindAll(ctx context.Context, p *domain.Principal, pageIndex, pageSize int) (pagination.Page[*domain.Transaction], error) {
	return s.List(ctx, p, domain.NoStatusFilter(), pagination.Request{Index: pageIndex, Size: pageSize})
}

// FindByStatus returns one page of transactions whose status equals status
// exactly. A blank status applies no filter.
func (s *TransactionService) FindByStatus(ctx context.Context, p *domain.Principal, status string, pageIndex, pageSize int) (pagination.Page[*domain.Transaction], error) {
	return s.List(ctx, p, domain.ParseStatusFilter(status), pagination.Request{Index: pageIndex, Size: pageSize})
}

// List returns one page of transactions matching filter
func (s *TransactionService) List(ctx context.Context, p *domain.Principal, filter domain.StatusFilter, req pagination.Request) (pagination.Page[*domain.Transaction], error) {
	if err := s.gate.Check(p, access.ListTransactions); err != nil {
		return pagination.Page[*domain.Transaction]{}, err
	}

	req, err := pagination.NewRequest(req.Index, req.Size, s.cfg.MaxPageSize)
	if err != nil {
		return pagination.Page[*domain.Transaction]{}, fmt.Errorf("%w: %w", domain.ErrInvalidPageRequest, err)
	}

	if status, ok := filter.Status(); ok && !status.IsValid() {
		return pagination.Empty[*domain.Transaction](req), nil
	}

	items, total, err := s.store.List(ctx, filter, req.Offset(), req.Limit())
	if err != nil {
		s.log.Error("list transactions failed", zap.Error(err))
		return pagination.Page[*domain.Transaction]{}, err
	}
	return pagination.NewPage(items, req, total), nil
}

// FindByID returns a single transaction
func (s *TransactionService) FindByID(ctx context.Context, p *domain.Principal, id uint) (*domain.Transaction, error) {
	if err := s.gate.Check(p, access.GetTransaction); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

// Save creates tx when it has no id and replaces the stored record otherwise
func (s *TransactionService) Save(ctx context.Context, p *domain.Principal, tx *domain.Transaction) (*domain.Transaction, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: transaction is required", domain.ErrInvalidInput)
	}
	if tx.ID == 0 {
		return s.Create(ctx, p, tx)
	}
	return s.Update(ctx, p, tx.ID, tx)
}

// Create stores a new transaction. Any caller-supplied id is ignored.
func (s *TransactionService) Create(ctx context.Context, p *domain.Principal, tx *domain.Transaction) (*domain.Transaction, error) {
	if err := s.gate.Check(p, access.CreateTransaction); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: transaction is required", domain.ErrInvalidInput)
	}

	rec := *tx
	rec.ID = 0
	rec.CreatedBy = p.Username
	s.normalize(&rec)
	if rec.Reference == "" {
		rec.Reference = reference.New()
	}

	if err := s.check(&rec); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, &rec); err != nil {
		s.log.Error("create transaction failed", zap.Error(err))
		return nil, err
	}

	s.log.Info("transaction created",
		zap.Uint("id", rec.ID),
		zap.String("reference", rec.Reference),
		zap.String("by", p.Username),
	)
	return &rec, nil
}

// Update fully replaces the transaction with the given id. The id always
// comes from the argument, never from tx.
func (s *TransactionService) Update(ctx context.Context, p *domain.Principal, id uint, tx *domain.Transaction) (*domain.Transaction, error) {
	if err := s.gate.Check(p, access.UpdateTransaction); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: transaction is required", domain.ErrInvalidInput)
	}

	rec := *tx
	rec.ID = id
	s.normalize(&rec)
	if err := s.check(&rec); err != nil {
		return nil, err
	}

	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Reference == "" {
		rec.Reference = existing.Reference
	}
	rec.CreatedBy = existing.CreatedBy
	rec.CreatedAt = existing.CreatedAt

	if err := s.store.Replace(ctx, &rec); err != nil {
		return nil, err
	}

	s.log.Info("transaction updated", zap.Uint("id", id), zap.String("by", p.Username))
	return &rec, nil
}

// DeleteByID removes a transaction
func (s *TransactionService) DeleteByID(ctx context.Context, p *domain.Principal, id uint) error {
	if err := s.gate.Check(p, access.DeleteTransaction); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("transaction deleted", zap.Uint("id", id), zap.String("by", p.Username))
	return nil
}

func (s *TransactionService) normalize(tx *domain.Transaction) {
	tx.Reference = strings.TrimSpace(tx.Reference)
	tx.Currency = strings.ToUpper(strings.TrimSpace(tx.Currency))
	if tx.Currency == "" {
		tx.Currency = s.cfg.DefaultCurrency
	}
	if tx.Status == "" {
		tx.Status = domain.StatusPending
	}
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = s.now()
	}
}

func (s *TransactionService) check(tx *domain.Transaction) error {
	return validateStruct(s.validate, transactionRules{
		Status:      string(tx.Status),
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		Type:        tx.Type,
		FromAccount: tx.FromAccount,
		ToAccount:   tx.ToAccount,
		Description: tx.Description,
		Reference:   tx.Reference,
	})
}
