package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"entitlement-backend/shared/database"
	"entitlement-backend/shared/database/models"
	"entitlement-backend/shared/utils/apperrors"
	"entitlement-backend/shared/utils/cache"
	"entitlement-backend/shared/utils/logger"
	"entitlement-backend/shared/utils/query"
)

// permissionSearchFields are the columns the free-text permission
// search matches against.
var permissionSearchFields = []string{"permission_name"}

// PermissionService owns the stored permission records. A record
// assigned to a user cannot be deleted; documents are replaced whole,
// never patched field by field.
type PermissionService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{
		db:  db,
		log: logger.For("permission-service"),
	}
}

// GetByID returns one permission record.
func (s *PermissionService) GetByID(ctx context.Context, id uint) (*models.Permission, error) {
	var perm models.Permission
	if err := s.db.WithContext(ctx).First(&perm, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound(fmt.Sprintf("permission with id %d not found", id))
		}
		return nil, apperrors.NewStore("failed to load permission", err)
	}
	return &perm, nil
}

// List returns a page of permission records filtered by name. Count and
// fetch share one transaction so the total matches the page.
func (s *PermissionService) List(ctx context.Context, params query.PageParams) (*query.PagedResult[models.Permission], error) {
	result := &query.PagedResult[models.Permission]{Data: []models.Permission{}}

	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		base := tx.Model(&models.Permission{})
		base = query.ApplySearch(base, params.SearchKey, permissionSearchFields)

		var total int64
		if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return apperrors.NewStore("failed to count permissions", err)
		}

		var perms []models.Permission
		pageQuery := base.Session(&gorm.Session{}).Order("id")
		pageQuery = query.ApplyPagination(pageQuery, params.Page, params.Size)
		if err := pageQuery.Find(&perms).Error; err != nil {
			return apperrors.NewStore("failed to list permissions", err)
		}

		result.Data = perms
		result.TotalElements = total
		result.TotalPages = query.TotalPages(total, params.Size)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update patches a permission record. A new document must be valid
// JSON and replaces the stored blob wholesale.
func (s *PermissionService) Update(ctx context.Context, id uint, req *UpdatePermissionRequest) (*models.Permission, error) {
	var perm models.Permission
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&perm, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("permission with id %d not found", id))
			}
			return apperrors.NewStore("failed to load permission", err)
		}

		if req.Name != nil {
			perm.PermissionName = *req.Name
		}
		if req.Document != nil {
			if !json.Valid([]byte(*req.Document)) {
				return apperrors.NewValidation("permission document must be valid JSON")
			}
			perm.Document = *req.Document
		}

		if err := tx.Save(&perm).Error; err != nil {
			return apperrors.FromStore("failed to update permission", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if perm.UserID != nil {
		cache.GetCacheManager().InvalidateUser(ctx, *perm.UserID)
	}
	return &perm, nil
}

// Delete removes a permission record that is not assigned to a user.
func (s *PermissionService) Delete(ctx context.Context, id uint) error {
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var perm models.Permission
		if err := tx.First(&perm, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("permission with id %d not found", id))
			}
			return apperrors.NewStore("failed to load permission", err)
		}

		if perm.UserID != nil {
			return apperrors.NewReferenced(
				fmt.Sprintf("permission with id %d is assigned to user %d", id, *perm.UserID))
		}

		if err := tx.Delete(&perm).Error; err != nil {
			return apperrors.NewStore("failed to delete permission", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Uint("permission_id", id).Msg("permission deleted")
	return nil
}
