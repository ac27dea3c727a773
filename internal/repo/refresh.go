package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/cagmc/jwtauth/internal/models"
)

func (r *GormRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshTokenData, error) {
	var data models.RefreshTokenData
	if err := r.DB.WithContext(ctx).Where("refresh_token = ?", token).First(&data).Error; err != nil {
		return nil, notFound(err, ErrRefreshNotFound)
	}
	return &data, nil
}

func (r *GormRepo) FindRefreshTokenByUsername(ctx context.Context, username string) (*models.RefreshTokenData, error) {
	var data models.RefreshTokenData
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&data).Error; err != nil {
		return nil, notFound(err, ErrRefreshNotFound)
	}
	return &data, nil
}

func (r *GormRepo) DeleteRefreshToken(ctx context.Context, data *models.RefreshTokenData) error {
	return r.DB.WithContext(ctx).Delete(&models.RefreshTokenData{}, data.ID).Error
}

func (r *GormRepo) CountRefreshTokens(ctx context.Context, username string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.RefreshTokenData{}).
		Where("username = ?", username).
		Count(&n).Error
	return n, err
}

// ReplaceRefreshToken stores data as the user's only refresh token. It is a
// single upsert on the username index, so concurrent logins of one user
// never leave two rows and never trip the unique index against each other.
func (r *GormRepo) ReplaceRefreshToken(ctx context.Context, data *models.RefreshTokenData) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"refresh_token", "expires"}),
	}).Create(data).Error
}

// ResolveRefreshToken returns the live record for token. An expired record
// is deleted and ErrRefreshExpired returned once the deletion is committed.
func (r *GormRepo) ResolveRefreshToken(ctx context.Context, token string, now time.Time) (*models.RefreshTokenData, error) {
	var (
		data    models.RefreshTokenData
		expired bool
	)

	err := r.Transaction(ctx, func(tx *GormRepo) error {
		found, err := tx.FindRefreshToken(ctx, token)
		if err != nil {
			return err
		}
		data = *found
		if now.After(data.Expires) {
			expired = true
			return tx.DeleteRefreshToken(ctx, &data)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, ErrRefreshExpired
	}
	return &data, nil
}

// RevokeRefreshTokens removes every refresh token held by username.
func (r *GormRepo) RevokeRefreshTokens(ctx context.Context, username string) error {
	return r.DB.WithContext(ctx).
		Where("username = ?", username).
		Delete(&models.RefreshTokenData{}).Error
}
