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

// MappingService maintains the link tables between subscriptions,
// services and permissions. Linking is idempotent: only the set
// difference against the current links is inserted, so re-sending an
// already linked id is a no-op rather than an error.
type MappingService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewMappingService(db *gorm.DB) *MappingService {
	return &MappingService{
		db:  db,
		log: logger.For("mapping-service"),
	}
}

// LinkServicesToSubscription attaches services to a subscription and
// returns the subscription's refreshed graph. Every id must resolve;
// otherwise the full set of unknown ids is reported and nothing is
// written.
func (s *MappingService) LinkServicesToSubscription(ctx context.Context, subscriptionID uint, serviceIDs []uint) (*SubscriptionResponse, error) {
	var sub *models.Subscription
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&models.Subscription{}, subscriptionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("subscription with id %d not found", subscriptionID))
			}
			return apperrors.NewStore("failed to load subscription", err)
		}

		missing, err := missingIDs(tx, &models.Service{}, serviceIDs)
		if err != nil {
			return apperrors.NewStore("failed to validate services", err)
		}
		if len(missing) > 0 {
			return apperrors.NewNotFound("services not found", fmt.Sprintf("unknown service ids: %v", missing))
		}

		var links []models.SubscriptionServiceLink
		if err := tx.Where("subscription_id = ?", subscriptionID).Find(&links).Error; err != nil {
			return apperrors.NewStore("failed to load subscription service links", err)
		}
		linked := make(map[uint]bool, len(links))
		for _, l := range links {
			linked[l.ServiceID] = true
		}

		for _, id := range uniqueIDs(serviceIDs) {
			if linked[id] {
				continue
			}
			link := models.SubscriptionServiceLink{SubscriptionID: subscriptionID, ServiceID: id}
			if err := tx.Create(&link).Error; err != nil {
				return apperrors.FromStore("failed to link service to subscription", err)
			}
		}

		sub, err = fetchSubscriptionGraph(tx, subscriptionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	cache.GetCacheManager().InvalidateAll(ctx)
	s.log.Info().Uint("subscription_id", subscriptionID).Ints("service_ids", toInts(serviceIDs)).Msg("services linked to subscription")
	return toSubscriptionResponse(sub), nil
}

// LinkApiPermissionsToService attaches API permissions to a service and
// returns the service's refreshed graph.
func (s *MappingService) LinkApiPermissionsToService(ctx context.Context, serviceID uint, permissionIDs []uint) (*ServiceResponse, error) {
	var svc *models.Service
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&models.Service{}, serviceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("service with id %d not found", serviceID))
			}
			return apperrors.NewStore("failed to load service", err)
		}

		missing, err := missingIDs(tx, &models.ApiPermission{}, permissionIDs)
		if err != nil {
			return apperrors.NewStore("failed to validate api permissions", err)
		}
		if len(missing) > 0 {
			return apperrors.NewNotFound("api permissions not found", fmt.Sprintf("unknown api permission ids: %v", missing))
		}

		var links []models.ServiceApiPermissionLink
		if err := tx.Where("service_id = ?", serviceID).Find(&links).Error; err != nil {
			return apperrors.NewStore("failed to load service api permission links", err)
		}
		linked := make(map[uint]bool, len(links))
		for _, l := range links {
			linked[l.ApiPermissionID] = true
		}

		for _, id := range uniqueIDs(permissionIDs) {
			if linked[id] {
				continue
			}
			link := models.ServiceApiPermissionLink{ServiceID: serviceID, ApiPermissionID: id}
			if err := tx.Create(&link).Error; err != nil {
				return apperrors.FromStore("failed to link api permission to service", err)
			}
		}

		svc, err = fetchServiceGraph(tx, serviceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	cache.GetCacheManager().InvalidateAll(ctx)
	s.log.Info().Uint("service_id", serviceID).Ints("api_permission_ids", toInts(permissionIDs)).Msg("api permissions linked to service")
	return toServiceResponse(svc), nil
}

// LinkPagePermissionsToService attaches page permissions to a service
// and returns the service's refreshed graph.
func (s *MappingService) LinkPagePermissionsToService(ctx context.Context, serviceID uint, permissionIDs []uint) (*ServiceResponse, error) {
	var svc *models.Service
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&models.Service{}, serviceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("service with id %d not found", serviceID))
			}
			return apperrors.NewStore("failed to load service", err)
		}

		missing, err := missingIDs(tx, &models.PagePermission{}, permissionIDs)
		if err != nil {
			return apperrors.NewStore("failed to validate page permissions", err)
		}
		if len(missing) > 0 {
			return apperrors.NewNotFound("page permissions not found", fmt.Sprintf("unknown page permission ids: %v", missing))
		}

		var links []models.ServicePagePermissionLink
		if err := tx.Where("service_id = ?", serviceID).Find(&links).Error; err != nil {
			return apperrors.NewStore("failed to load service page permission links", err)
		}
		linked := make(map[uint]bool, len(links))
		for _, l := range links {
			linked[l.PagePermissionID] = true
		}

		for _, id := range uniqueIDs(permissionIDs) {
			if linked[id] {
				continue
			}
			link := models.ServicePagePermissionLink{ServiceID: serviceID, PagePermissionID: id}
			if err := tx.Create(&link).Error; err != nil {
				return apperrors.FromStore("failed to link page permission to service", err)
			}
		}

		svc, err = fetchServiceGraph(tx, serviceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	cache.GetCacheManager().InvalidateAll(ctx)
	s.log.Info().Uint("service_id", serviceID).Ints("page_permission_ids", toInts(permissionIDs)).Msg("page permissions linked to service")
	return toServiceResponse(svc), nil
}

// ValidateServices returns the subset of ids that do not resolve to a
// service, in input order.
func (s *MappingService) ValidateServices(ctx context.Context, ids []uint) ([]uint, error) {
	missing, err := missingIDs(s.db.WithContext(ctx), &models.Service{}, ids)
	if err != nil {
		return nil, apperrors.NewStore("failed to validate services", err)
	}
	return missing, nil
}

// ValidateApiPermissions returns the subset of ids that do not resolve
// to an API permission, in input order.
func (s *MappingService) ValidateApiPermissions(ctx context.Context, ids []uint) ([]uint, error) {
	missing, err := missingIDs(s.db.WithContext(ctx), &models.ApiPermission{}, ids)
	if err != nil {
		return nil, apperrors.NewStore("failed to validate api permissions", err)
	}
	return missing, nil
}

// ValidatePagePermissions returns the subset of ids that do not resolve
// to a page permission, in input order.
func (s *MappingService) ValidatePagePermissions(ctx context.Context, ids []uint) ([]uint, error) {
	missing, err := missingIDs(s.db.WithContext(ctx), &models.PagePermission{}, ids)
	if err != nil {
		return nil, apperrors.NewStore("failed to validate page permissions", err)
	}
	return missing, nil
}

// missingIDs selects the requested ids against the model's table and
// returns the ones that do not exist, preserving input order.
func missingIDs(tx *gorm.DB, model interface{}, ids []uint) ([]uint, error) {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return nil, nil
	}

	var found []uint
	if err := tx.Model(model).Where("id IN ?", unique).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	exists := make(map[uint]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}

	var missing []uint
	for _, id := range unique {
		if !exists[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// uniqueIDs deduplicates while preserving first-occurrence order.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func toInts(ids []uint) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		out = append(out, int(id))
	}
	return out
}
