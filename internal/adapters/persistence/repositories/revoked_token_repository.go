package repositories

import (
	"context"
	"time"

	"finance-backoffice/internal/adapters/persistence/models"
	"finance-backoffice/internal/core/domain"

	"gorm.io/gorm"
)

// revokedTokenRepository implements RevokedTokenRepository interface
type revokedTokenRepository struct {
	db *gorm.DB
}

// NewRevokedTokenRepository creates a new revoked token repository
func NewRevokedTokenRepository(db *gorm.DB) RevokedTokenRepository {
	return &revokedTokenRepository{db: db}
}

// Revoke inserts tokenID. The unique index makes the first insert win;
// a duplicate means the token was already revoked.
func (r *revokedTokenRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	row := &models.RevokedToken{TokenID: tokenID, ExpiresAt: expiresAt}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrTokenRevoked
		}
		return translate("revoke token", err)
	}
	return nil
}

// IsRevoked checks if tokenID has been revoked
func (r *revokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RevokedToken{}).
		Where("token_id = ?", tokenID).
		Count(&count).Error
	if err != nil {
		return false, translate("check revoked token", err)
	}
	return count > 0, nil
}

// PurgeExpired deletes revocations whose token has expired (cleanup job)
func (r *revokedTokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.RevokedToken{})
	if result.Error != nil {
		return 0, translate("purge revoked tokens", result.Error)
	}
	return result.RowsAffected, nil
}
