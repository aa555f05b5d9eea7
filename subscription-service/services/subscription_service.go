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

// activeSubscriptionLimit caps the public active-plan listing.
const activeSubscriptionLimit = 3

// SubscriptionService owns the subscription aggregate: CRUD, the active
// plan listing and the cascade delete of a subscription's link rows.
type SubscriptionService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{
		db:  db,
		log: logger.For("subscription-service"),
	}
}

// validateSubscription rejects malformed writable fields before any
// store access.
func validateSubscription(req *CreateSubscriptionRequest) error {
	if req.Name == "" {
		return apperrors.NewValidation("subscription name is required")
	}
	if req.Cost <= 0 {
		return apperrors.NewValidation("subscription cost must be greater than zero")
	}
	if req.Validity <= 0 {
		return apperrors.NewValidation("subscription validity must be greater than zero")
	}
	if !req.SubscriptionType.IsValid() {
		return apperrors.NewValidation(fmt.Sprintf("invalid subscription type: %s", req.SubscriptionType))
	}
	return nil
}

// Create inserts a new subscription. Names are unique across
// subscriptions.
func (s *SubscriptionService) Create(ctx context.Context, req *CreateSubscriptionRequest) (*SubscriptionResponse, error) {
	if err := validateSubscription(req); err != nil {
		return nil, err
	}

	sub := models.Subscription{
		Name:             req.Name,
		Validity:         req.Validity,
		Cost:             req.Cost,
		ActiveStatus:     req.ActiveStatus,
		SubscriptionType: req.SubscriptionType,
	}

	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Subscription{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
			return apperrors.NewStore("failed to check subscription name", err)
		}
		if count > 0 {
			return apperrors.NewConflict(fmt.Sprintf("subscription with name '%s' already exists", req.Name))
		}
		if err := tx.Create(&sub).Error; err != nil {
			return apperrors.FromStore("failed to create subscription", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("subscription_id", sub.ID).Str("name", sub.Name).Msg("subscription created")
	return s.GetByID(ctx, sub.ID)
}

// Update replaces the writable fields of an existing subscription. The
// uniqueness check excludes the subscription's own row so renaming a
// subscription to its current name succeeds.
func (s *SubscriptionService) Update(ctx context.Context, id uint, req *CreateSubscriptionRequest) (*SubscriptionResponse, error) {
	if err := validateSubscription(req); err != nil {
		return nil, err
	}

	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.First(&sub, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("subscription with id %d not found", id))
			}
			return apperrors.NewStore("failed to load subscription", err)
		}

		var count int64
		if err := tx.Model(&models.Subscription{}).Where("name = ? AND id <> ?", req.Name, id).Count(&count).Error; err != nil {
			return apperrors.NewStore("failed to check subscription name", err)
		}
		if count > 0 {
			return apperrors.NewConflict(fmt.Sprintf("subscription with name '%s' already exists", req.Name))
		}

		sub.Name = req.Name
		sub.Validity = req.Validity
		sub.Cost = req.Cost
		sub.ActiveStatus = req.ActiveStatus
		sub.SubscriptionType = req.SubscriptionType

		if err := tx.Save(&sub).Error; err != nil {
			return apperrors.FromStore("failed to update subscription", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.GetCacheManager().InvalidateAll(ctx)
	return s.GetByID(ctx, id)
}

// GetByID returns one subscription with its services and their
// permissions preloaded.
func (s *SubscriptionService) GetByID(ctx context.Context, id uint) (*SubscriptionResponse, error) {
	sub, err := fetchSubscriptionGraph(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return toSubscriptionResponse(sub), nil
}

// List returns every subscription with its full service graph.
func (s *SubscriptionService) List(ctx context.Context) ([]SubscriptionResponse, error) {
	var subs []models.Subscription
	err := s.db.WithContext(ctx).
		Preload("Services.ApiPermissions").
		Preload("Services.PagePermissions").
		Order("id").
		Find(&subs).Error
	if err != nil {
		return nil, apperrors.NewStore("failed to list subscriptions", err)
	}

	out := make([]SubscriptionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, *toSubscriptionResponse(&subs[i]))
	}
	return out, nil
}

// ListActive returns up to three active subscriptions for the public
// plan listing.
func (s *SubscriptionService) ListActive(ctx context.Context) ([]SubscriptionResponse, error) {
	var subs []models.Subscription
	err := s.db.WithContext(ctx).
		Preload("Services.ApiPermissions").
		Preload("Services.PagePermissions").
		Where("active_status = ?", true).
		Order("id").
		Limit(activeSubscriptionLimit).
		Find(&subs).Error
	if err != nil {
		return nil, apperrors.NewStore("failed to list active subscriptions", err)
	}

	out := make([]SubscriptionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, *toSubscriptionResponse(&subs[i]))
	}
	return out, nil
}

// Delete removes a subscription and its service link rows. The services
// themselves survive; only the mapping to this subscription goes away.
// A subscription still held by an organization cannot be deleted.
func (s *SubscriptionService) Delete(ctx context.Context, id uint) error {
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.First(&sub, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("subscription with id %d not found", id))
			}
			return apperrors.NewStore("failed to load subscription", err)
		}

		var holders int64
		if err := tx.Model(&models.OrganizationSubscription{}).Where("subscription_id = ?", id).Count(&holders).Error; err != nil {
			return apperrors.NewStore("failed to check subscription holders", err)
		}
		if holders > 0 {
			return apperrors.NewReferenced(
				fmt.Sprintf("subscription with id %d is held by %d organization(s)", id, holders))
		}

		if err := tx.Where("subscription_id = ?", id).Delete(&models.SubscriptionServiceLink{}).Error; err != nil {
			return apperrors.NewStore("failed to remove subscription service links", err)
		}
		if err := tx.Delete(&sub).Error; err != nil {
			return apperrors.NewStore("failed to delete subscription", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.GetCacheManager().InvalidateAll(ctx)
	s.log.Info().Uint("subscription_id", id).Msg("subscription deleted")
	return nil
}

// fetchSubscriptionGraph loads a subscription with services and both
// permission sets attached, the shape every subscription read returns.
func fetchSubscriptionGraph(tx *gorm.DB, id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := tx.
		Preload("Services.ApiPermissions").
		Preload("Services.PagePermissions").
		First(&sub, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound(fmt.Sprintf("subscription with id %d not found", id))
		}
		return nil, apperrors.NewStore("failed to load subscription", err)
	}
	return &sub, nil
}
