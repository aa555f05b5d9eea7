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

// CatalogService owns the service entity: CRUD, the per-subscription
// listing and the scoped cascade delete that removes a service together
// with its link rows.
type CatalogService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{
		db:  db,
		log: logger.For("catalog-service"),
	}
}

// CreateService inserts a service and, when requested, links it to a
// subscription and a set of API permissions in the same transaction.
// All referenced ids must resolve before anything is written.
func (s *CatalogService) CreateService(ctx context.Context, req *CreateServiceRequest) (*ServiceResponse, error) {
	if req.Name == "" {
		return nil, apperrors.NewValidation("service name is required")
	}

	svc := models.Service{
		Name:         req.Name,
		Description:  req.Description,
		ActiveStatus: req.ActiveStatus,
	}

	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Service{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
			return apperrors.NewStore("failed to check service name", err)
		}
		if count > 0 {
			return apperrors.NewConflict(fmt.Sprintf("service with name '%s' already exists", req.Name))
		}

		if req.SubscriptionID != 0 {
			if err := tx.First(&models.Subscription{}, req.SubscriptionID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return apperrors.NewNotFound(fmt.Sprintf("subscription with id %d not found", req.SubscriptionID))
				}
				return apperrors.NewStore("failed to load subscription", err)
			}
		}

		missing, err := missingIDs(tx, &models.ApiPermission{}, req.ApiPermissionIDs)
		if err != nil {
			return apperrors.NewStore("failed to validate api permissions", err)
		}
		if len(missing) > 0 {
			return apperrors.NewNotFound("api permissions not found", fmt.Sprintf("unknown api permission ids: %v", missing))
		}

		if err := tx.Create(&svc).Error; err != nil {
			return apperrors.FromStore("failed to create service", err)
		}

		if req.SubscriptionID != 0 {
			link := models.SubscriptionServiceLink{SubscriptionID: req.SubscriptionID, ServiceID: svc.ID}
			if err := tx.Create(&link).Error; err != nil {
				return apperrors.FromStore("failed to link service to subscription", err)
			}
		}
		for _, id := range uniqueIDs(req.ApiPermissionIDs) {
			link := models.ServiceApiPermissionLink{ServiceID: svc.ID, ApiPermissionID: id}
			if err := tx.Create(&link).Error; err != nil {
				return apperrors.FromStore("failed to link api permission to service", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.GetCacheManager().InvalidateAll(ctx)
	s.log.Info().Uint("service_id", svc.ID).Str("name", svc.Name).Msg("service created")
	return s.GetService(ctx, svc.ID)
}

// UpdateService patches a service. A non-nil ApiPermissionIDs slice
// replaces the service's API permission links wholesale; a non-nil
// SubscriptionID adds a subscription link if one is not already there.
func (s *CatalogService) UpdateService(ctx context.Context, id uint, req *UpdateServiceRequest) (*ServiceResponse, error) {
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var svc models.Service
		if err := tx.First(&svc, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("service with id %d not found", id))
			}
			return apperrors.NewStore("failed to load service", err)
		}

		if req.Name != nil {
			if *req.Name == "" {
				return apperrors.NewValidation("service name is required")
			}
			var count int64
			if err := tx.Model(&models.Service{}).Where("name = ? AND id <> ?", *req.Name, id).Count(&count).Error; err != nil {
				return apperrors.NewStore("failed to check service name", err)
			}
			if count > 0 {
				return apperrors.NewConflict(fmt.Sprintf("service with name '%s' already exists", *req.Name))
			}
			svc.Name = *req.Name
		}
		if req.Description != nil {
			svc.Description = *req.Description
		}
		if req.ActiveStatus != nil {
			svc.ActiveStatus = *req.ActiveStatus
		}

		if req.ApiPermissionIDs != nil {
			missing, err := missingIDs(tx, &models.ApiPermission{}, req.ApiPermissionIDs)
			if err != nil {
				return apperrors.NewStore("failed to validate api permissions", err)
			}
			if len(missing) > 0 {
				return apperrors.NewNotFound("api permissions not found", fmt.Sprintf("unknown api permission ids: %v", missing))
			}
			if err := tx.Where("service_id = ?", id).Delete(&models.ServiceApiPermissionLink{}).Error; err != nil {
				return apperrors.NewStore("failed to clear service api permission links", err)
			}
			for _, pid := range uniqueIDs(req.ApiPermissionIDs) {
				link := models.ServiceApiPermissionLink{ServiceID: id, ApiPermissionID: pid}
				if err := tx.Create(&link).Error; err != nil {
					return apperrors.FromStore("failed to link api permission to service", err)
				}
			}
		}

		if req.SubscriptionID != nil {
			if err := tx.First(&models.Subscription{}, *req.SubscriptionID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return apperrors.NewNotFound(fmt.Sprintf("subscription with id %d not found", *req.SubscriptionID))
				}
				return apperrors.NewStore("failed to load subscription", err)
			}
			var count int64
			if err := tx.Model(&models.SubscriptionServiceLink{}).
				Where("subscription_id = ? AND service_id = ?", *req.SubscriptionID, id).
				Count(&count).Error; err != nil {
				return apperrors.NewStore("failed to check subscription service link", err)
			}
			if count == 0 {
				link := models.SubscriptionServiceLink{SubscriptionID: *req.SubscriptionID, ServiceID: id}
				if err := tx.Create(&link).Error; err != nil {
					return apperrors.FromStore("failed to link service to subscription", err)
				}
			}
		}

		if err := tx.Save(&svc).Error; err != nil {
			return apperrors.FromStore("failed to update service", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.GetCacheManager().InvalidateAll(ctx)
	return s.GetService(ctx, id)
}

// GetService returns one service with both permission sets preloaded.
func (s *CatalogService) GetService(ctx context.Context, id uint) (*ServiceResponse, error) {
	svc, err := fetchServiceGraph(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return toServiceResponse(svc), nil
}

// ListServices returns every service with its permissions.
func (s *CatalogService) ListServices(ctx context.Context) ([]ServiceResponse, error) {
	var svcs []models.Service
	err := s.db.WithContext(ctx).
		Preload("ApiPermissions").
		Preload("PagePermissions").
		Order("id").
		Find(&svcs).Error
	if err != nil {
		return nil, apperrors.NewStore("failed to list services", err)
	}

	out := make([]ServiceResponse, 0, len(svcs))
	for i := range svcs {
		out = append(out, *toServiceResponse(&svcs[i]))
	}
	return out, nil
}

// ListServicesBySubscription returns the services linked to one
// subscription.
func (s *CatalogService) ListServicesBySubscription(ctx context.Context, subscriptionID uint) ([]ServiceResponse, error) {
	sub, err := fetchSubscriptionGraph(s.db.WithContext(ctx), subscriptionID)
	if err != nil {
		return nil, err
	}
	return toSubscriptionResponse(sub).Services, nil
}

// ListApiPermissionsByService returns the API permissions linked to one
// service.
func (s *CatalogService) ListApiPermissionsByService(ctx context.Context, serviceID uint) ([]ApiPermissionResponse, error) {
	svc, err := fetchServiceGraph(s.db.WithContext(ctx), serviceID)
	if err != nil {
		return nil, err
	}
	return toServiceResponse(svc).ApiPermissions, nil
}

// DeleteService removes a service in the scope of one subscription: its
// API and page permission link rows, the link to that subscription and
// the service row itself go in a single transaction. Links from other
// subscriptions to other services are untouched.
func (s *CatalogService) DeleteService(ctx context.Context, serviceID, subscriptionID uint) error {
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var svc models.Service
		if err := tx.First(&svc, serviceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("service with id %d not found", serviceID))
			}
			return apperrors.NewStore("failed to load service", err)
		}

		var link models.SubscriptionServiceLink
		err := tx.Where("subscription_id = ? AND service_id = ?", subscriptionID, serviceID).First(&link).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(
					fmt.Sprintf("service with id %d is not linked to subscription %d", serviceID, subscriptionID))
			}
			return apperrors.NewStore("failed to load subscription service link", err)
		}

		if err := tx.Where("service_id = ?", serviceID).Delete(&models.ServiceApiPermissionLink{}).Error; err != nil {
			return apperrors.NewStore("failed to remove service api permission links", err)
		}
		if err := tx.Where("service_id = ?", serviceID).Delete(&models.ServicePagePermissionLink{}).Error; err != nil {
			return apperrors.NewStore("failed to remove service page permission links", err)
		}
		// Only the targeted subscription link goes; links held by other
		// subscriptions are left as they are.
		if err := tx.Delete(&link).Error; err != nil {
			return apperrors.NewStore("failed to remove subscription service link", err)
		}
		if err := tx.Delete(&svc).Error; err != nil {
			return apperrors.NewStore("failed to delete service", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.GetCacheManager().InvalidateAll(ctx)
	s.log.Info().Uint("service_id", serviceID).Uint("subscription_id", subscriptionID).Msg("service deleted")
	return nil
}

// fetchServiceGraph loads a service with both permission sets attached.
func fetchServiceGraph(tx *gorm.DB, id uint) (*models.Service, error) {
	var svc models.Service
	err := tx.
		Preload("ApiPermissions").
		Preload("PagePermissions").
		First(&svc, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound(fmt.Sprintf("service with id %d not found", id))
		}
		return nil, apperrors.NewStore("failed to load service", err)
	}
	return &svc, nil
}
