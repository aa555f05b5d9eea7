package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"entitlement-backend/shared/database"
	"entitlement-backend/shared/database/models"
	"entitlement-backend/shared/utils/apperrors"
	"entitlement-backend/shared/utils/cache"
	"entitlement-backend/shared/utils/logger"
)

// PermissionCatalogService owns the API and page permission catalogs.
// Deleting a permission is never blocked by service links; the link
// rows are removed atomically with the permission row instead.
type PermissionCatalogService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewPermissionCatalogService(db *gorm.DB) *PermissionCatalogService {
	return &PermissionCatalogService{
		db:  db,
		log: logger.For("permission-catalog-service"),
	}
}

// CreateApiPermission inserts a new API permission.
func (s *PermissionCatalogService) CreateApiPermission(ctx context.Context, req *CreateApiPermissionRequest) (*ApiPermissionResponse, error) {
	if req.Name == "" {
		return nil, apperrors.NewValidation("api permission name is required")
	}
	if !req.Method.IsValid() {
		return nil, apperrors.NewValidation(fmt.Sprintf("invalid http method: %s", req.Method))
	}

	perm := models.ApiPermission{
		Name:        req.Name,
		Method:      req.Method,
		ApiURL:      req.ApiURL,
		Description: req.Description,
		Status:      req.Status,
	}

	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ApiPermission{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
			return apperrors.NewStore("failed to check api permission name", err)
		}
		if count > 0 {
			return apperrors.NewConflict(fmt.Sprintf("api permission with name '%s' already exists", req.Name))
		}
		if err := tx.Create(&perm).Error; err != nil {
			return apperrors.FromStore("failed to create api permission", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("api_permission_id", perm.ID).Str("name", perm.Name).Msg("api permission created")
	resp := toApiPermissionResponse(&perm)
	return &resp, nil
}

// UpdateApiPermission patches an API permission.
func (s *PermissionCatalogService) UpdateApiPermission(ctx context.Context, id uint, req *UpdateApiPermissionRequest) (*ApiPermissionResponse, error) {
	var perm models.ApiPermission
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&perm, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("api permission with id %d not found", id))
			}
			return apperrors.NewStore("failed to load api permission", err)
		}

		if req.Name != nil {
			var count int64
			if err := tx.Model(&models.ApiPermission{}).Where("name = ? AND id <> ?", *req.Name, id).Count(&count).Error; err != nil {
				return apperrors.NewStore("failed to check api permission name", err)
			}
			if count > 0 {
				return apperrors.NewConflict(fmt.Sprintf("api permission with name '%s' already exists", *req.Name))
			}
			perm.Name = *req.Name
		}
		if req.Method != nil {
			if !req.Method.IsValid() {
				return apperrors.NewValidation(fmt.Sprintf("invalid http method: %s", *req.Method))
			}
			perm.Method = *req.Method
		}
		if req.ApiURL != nil {
			perm.ApiURL = *req.ApiURL
		}
		if req.Description != nil {
			perm.Description = *req.Description
		}
		if req.Status != nil {
			perm.Status = *req.Status
		}

		if err := tx.Save(&perm).Error; err != nil {
			return apperrors.FromStore("failed to update api permission", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.GetCacheManager().InvalidateAll(ctx)
	resp := toApiPermissionResponse(&perm)
	return &resp, nil
}

// GetApiPermission returns one API permission.
func (s *PermissionCatalogService) GetApiPermission(ctx context.Context, id uint) (*ApiPermissionResponse, error) {
	var perm models.ApiPermission
	if err := s.db.WithContext(ctx).First(&perm, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound(fmt.Sprintf("api permission with id %d not found", id))
		}
		return nil, apperrors.NewStore("failed to load api permission", err)
	}
	resp := toApiPermissionResponse(&perm)
	return &resp, nil
}

// ListApiPermissions returns every API permission.
func (s *PermissionCatalogService) ListApiPermissions(ctx context.Context) ([]ApiPermissionResponse, error) {
	var perms []models.ApiPermission
	if err := s.db.WithContext(ctx).Order("id").Find(&perms).Error; err != nil {
		return nil, apperrors.NewStore("failed to list api permissions", err)
	}
	out := make([]ApiPermissionResponse, 0, len(perms))
	for i := range perms {
		out = append(out, toApiPermissionResponse(&perms[i]))
	}
	return out, nil
}

// DeleteApiPermission removes an API permission together with its
// service link rows.
func (s *PermissionCatalogService) DeleteApiPermission(ctx context.Context, id uint) error {
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var perm models.ApiPermission
		if err := tx.First(&perm, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("api permission with id %d not found", id))
			}
			return apperrors.NewStore("failed to load api permission", err)
		}
		if err := tx.Where("api_permission_id = ?", id).Delete(&models.ServiceApiPermissionLink{}).Error; err != nil {
			return apperrors.NewStore("failed to remove api permission links", err)
		}
		if err := tx.Delete(&perm).Error; err != nil {
			return apperrors.NewStore("failed to delete api permission", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.GetCacheManager().InvalidateAll(ctx)
	s.log.Info().Uint("api_permission_id", id).Msg("api permission deleted")
	return nil
}

// CreatePagePermission inserts a new page permission. Status defaults
// to active when the request leaves it unset.
func (s *PermissionCatalogService) CreatePagePermission(ctx context.Context, req *CreatePagePermissionRequest) (*PagePermissionResponse, error) {
	if req.PageURL == "" {
		return nil, apperrors.NewValidation("page url is required")
	}

	status := true
	if req.Status != nil {
		status = *req.Status
	}
	perm := models.PagePermission{
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		PageURL:     req.PageURL,
	}

	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PagePermission{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
			return apperrors.NewStore("failed to check page permission name", err)
		}
		if count > 0 {
			return apperrors.NewConflict(fmt.Sprintf("page permission with name '%s' already exists", req.Name))
		}
		if err := tx.Create(&perm).Error; err != nil {
			return apperrors.FromStore("failed to create page permission", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("page_permission_id", perm.ID).Str("name", perm.Name).Msg("page permission created")
	resp := toPagePermissionResponse(&perm)
	return &resp, nil
}

// UpdatePagePermission patches a page permission.
func (s *PermissionCatalogService) UpdatePagePermission(ctx context.Context, id uint, req *UpdatePagePermissionRequest) (*PagePermissionResponse, error) {
	var perm models.PagePermission
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&perm, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("page permission with id %d not found", id))
			}
			return apperrors.NewStore("failed to load page permission", err)
		}

		if req.Name != nil {
			var count int64
			if err := tx.Model(&models.PagePermission{}).Where("name = ? AND id <> ?", *req.Name, id).Count(&count).Error; err != nil {
				return apperrors.NewStore("failed to check page permission name", err)
			}
			if count > 0 {
				return apperrors.NewConflict(fmt.Sprintf("page permission with name '%s' already exists", *req.Name))
			}
			perm.Name = *req.Name
		}
		if req.Description != nil {
			perm.Description = *req.Description
		}
		if req.Status != nil {
			perm.Status = *req.Status
		}
		if req.PageURL != nil {
			if *req.PageURL == "" {
				return apperrors.NewValidation("page url is required")
			}
			perm.PageURL = *req.PageURL
		}

		if err := tx.Save(&perm).Error; err != nil {
			return apperrors.FromStore("failed to update page permission", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.GetCacheManager().InvalidateAll(ctx)
	resp := toPagePermissionResponse(&perm)
	return &resp, nil
}

// GetPagePermission returns one page permission.
func (s *PermissionCatalogService) GetPagePermission(ctx context.Context, id uint) (*PagePermissionResponse, error) {
	var perm models.PagePermission
	if err := s.db.WithContext(ctx).First(&perm, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound(fmt.Sprintf("page permission with id %d not found", id))
		}
		return nil, apperrors.NewStore("failed to load page permission", err)
	}
	resp := toPagePermissionResponse(&perm)
	return &resp, nil
}

// ListPagePermissions returns every page permission.
func (s *PermissionCatalogService) ListPagePermissions(ctx context.Context) ([]PagePermissionResponse, error) {
	var perms []models.PagePermission
	if err := s.db.WithContext(ctx).Order("id").Find(&perms).Error; err != nil {
		return nil, apperrors.NewStore("failed to list page permissions", err)
	}
	out := make([]PagePermissionResponse, 0, len(perms))
	for i := range perms {
		out = append(out, toPagePermissionResponse(&perms[i]))
	}
	return out, nil
}

// DeletePagePermission removes a page permission together with its
// service link rows.
func (s *PermissionCatalogService) DeletePagePermission(ctx context.Context, id uint) error {
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var perm models.PagePermission
		if err := tx.First(&perm, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("page permission with id %d not found", id))
			}
			return apperrors.NewStore("failed to load page permission", err)
		}
		if err := tx.Where("page_permission_id = ?", id).Delete(&models.ServicePagePermissionLink{}).Error; err != nil {
			return apperrors.NewStore("failed to remove page permission links", err)
		}
		if err := tx.Delete(&perm).Error; err != nil {
			return apperrors.NewStore("failed to delete page permission", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.GetCacheManager().InvalidateAll(ctx)
	s.log.Info().Uint("page_permission_id", id).Msg("page permission deleted")
	return nil
}
