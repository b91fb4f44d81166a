package repositories

import (
	"context"

	"finance-backoffice/internal/adapters/persistence/models"
	"finance-backoffice/internal/core/domain"

	"gorm.io/gorm"
)

// transactionRepository implements TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	row := models.TransactionFromDomain(tx)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicate(err) {
			return domainInput("reference already exists")
		}
		return translate("create transaction", err)
	}
	*tx = *row.ToDomain()
	return nil
}

// Replace overwrites every column of an existing transaction. The lookup
// and the write run in one database transaction.
func (r *transactionRepository) Replace(ctx context.Context, tx *domain.Transaction) error {
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var existing models.Transaction
		if err := db.Where("id = ?", tx.ID).First(&existing).Error; err != nil {
			return err
		}

		row := models.TransactionFromDomain(tx)
		row.CreatedAt = existing.CreatedAt
		if err := db.Save(row).Error; err != nil {
			return err
		}
		*tx = *row.ToDomain()
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return domainInput("reference already exists")
		}
		return translate("replace transaction", err)
	}
	return nil
}

// FindByID gets a transaction by ID
func (r *transactionRepository) FindByID(ctx context.Context, id uint) (*domain.Transaction, error) {
	var row models.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate("find transaction", err)
	}
	return row.ToDomain(), nil
}

// List lists transactions ordered by id with pagination
func (r *transactionRepository) List(ctx context.Context, filter domain.StatusFilter, offset, limit int) ([]*domain.Transaction, int64, error) {
	// Count total
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, translate("count transactions", err)
	}

	items := make([]*domain.Transaction, 0, limit)
	if total == 0 || offset < 0 || int64(offset) >= total {
		return items, total, nil
	}

	var rows []models.Transaction
	if err := r.filtered(ctx, filter).Order("id ASC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, translate("list transactions", err)
	}
	for i := range rows {
		items = append(items, rows[i].ToDomain())
	}
	return items, total, nil
}

func (r *transactionRepository) filtered(ctx context.Context, filter domain.StatusFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if status, ok := filter.Status(); ok {
		query = query.Where("status = ?", string(status))
	}
	return query
}

// Delete deletes a transaction
func (r *transactionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Transaction{}, id)
	if result.Error != nil {
		return translate("delete transaction", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
