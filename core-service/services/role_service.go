package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"entitlement-backend/shared/database"
	"entitlement-backend/shared/database/models"
	"entitlement-backend/shared/utils/apperrors"
	"entitlement-backend/shared/utils/logger"
)

// RoleService owns the role catalog. A role referenced by any user
// cannot be deleted.
type RoleService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{
		db:  db,
		log: logger.For("role-service"),
	}
}

// Create inserts a new role. Role names are unique.
func (s *RoleService) Create(ctx context.Context, req *CreateRoleRequest) (*models.Role, error) {
	role := models.Role{
		Name:        req.Name,
		Description: req.Description,
	}

	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Role{}).Where("role = ?", req.Name).Count(&count).Error; err != nil {
			return apperrors.NewStore("failed to check role name", err)
		}
		if count > 0 {
			return apperrors.NewConflict(fmt.Sprintf("role with name '%s' already exists", req.Name))
		}
		if err := tx.Create(&role).Error; err != nil {
			return apperrors.FromStore("failed to create role", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("role_id", role.ID).Str("name", role.Name).Msg("role created")
	return &role, nil
}

// Update patches a role. The uniqueness check excludes the role's own
// row.
func (s *RoleService) Update(ctx context.Context, id uint, req *UpdateRoleRequest) (*models.Role, error) {
	var role models.Role
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&role, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("role with id %d not found", id))
			}
			return apperrors.NewStore("failed to load role", err)
		}

		if req.Name != nil {
			var count int64
			if err := tx.Model(&models.Role{}).Where("role = ? AND id <> ?", *req.Name, id).Count(&count).Error; err != nil {
				return apperrors.NewStore("failed to check role name", err)
			}
			if count > 0 {
				return apperrors.NewConflict(fmt.Sprintf("role with name '%s' already exists", *req.Name))
			}
			role.Name = *req.Name
		}
		if req.Description != nil {
			role.Description = *req.Description
		}

		if err := tx.Save(&role).Error; err != nil {
			return apperrors.FromStore("failed to update role", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetByID returns one role.
func (s *RoleService) GetByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound(fmt.Sprintf("role with id %d not found", id))
		}
		return nil, apperrors.NewStore("failed to load role", err)
	}
	return &role, nil
}

// List returns every role.
func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, apperrors.NewStore("failed to list roles", err)
	}
	return roles, nil
}

// Delete removes a role that no user currently holds. While any user
// references the role the delete is refused and the row remains.
func (s *RoleService) Delete(ctx context.Context, id uint) error {
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("role with id %d not found", id))
			}
			return apperrors.NewStore("failed to load role", err)
		}

		var holders int64
		if err := tx.Model(&models.User{}).Where("role_id = ?", id).Count(&holders).Error; err != nil {
			return apperrors.NewStore("failed to count role holders", err)
		}
		if holders > 0 {
			return apperrors.NewReferenced(
				fmt.Sprintf("role with id %d is assigned to %d user(s)", id, holders))
		}

		if err := tx.Delete(&role).Error; err != nil {
			return apperrors.NewStore("failed to delete role", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Uint("role_id", id).Msg("role deleted")
	return nil
}
