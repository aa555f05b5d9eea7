package services

import (
	"entitlement-backend/shared/database/models"
)

// SubscriptionResponse is the subscription read model with its full
// service graph attached.
type SubscriptionResponse struct {
	ID               uint                    `json:"id"`
	Name             string                  `json:"name"`
	Validity         int                     `json:"validity"`
	Cost             int                     `json:"cost"`
	ActiveStatus     bool                    `json:"active_status"`
	SubscriptionType models.SubscriptionType `json:"subscription_type"`
	Services         []ServiceResponse       `json:"services"`
}

// ServiceResponse is the service read model with both permission sets.
type ServiceResponse struct {
	ID              uint                     `json:"id"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	ActiveStatus    bool                     `json:"active_status"`
	ApiPermissions  []ApiPermissionResponse  `json:"api_permissions"`
	PagePermissions []PagePermissionResponse `json:"page_permissions"`
}

type ApiPermissionResponse struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Method      models.HttpMethod `json:"method"`
	ApiURL      string            `json:"api_url"`
	Description string            `json:"description"`
	Status      bool              `json:"status"`
}

type PagePermissionResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      bool   `json:"status"`
	PageURL     string `json:"page_url"`
}

// CreateSubscriptionRequest carries the writable subscription fields.
// Update uses the same shape; all fields are required on both paths.
type CreateSubscriptionRequest struct {
	Name             string                  `json:"name" binding:"required"`
	Validity         int                     `json:"validity" binding:"required"`
	Cost             int                     `json:"cost" binding:"required"`
	ActiveStatus     bool                    `json:"active_status"`
	SubscriptionType models.SubscriptionType `json:"subscription_type" binding:"required"`
}

// CreateServiceRequest creates a service and optionally links it to a
// subscription and a set of API permissions in the same operation.
type CreateServiceRequest struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	ActiveStatus     bool   `json:"active_status"`
	SubscriptionID   uint   `json:"subscription_id"`
	ApiPermissionIDs []uint `json:"api_permission_ids"`
}

// UpdateServiceRequest patches a service. Nil pointer and nil slice
// fields are left untouched; an empty ApiPermissionIDs slice clears the
// service's API permission links.
type UpdateServiceRequest struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	ActiveStatus     *bool   `json:"active_status"`
	SubscriptionID   *uint   `json:"subscription_id"`
	ApiPermissionIDs []uint  `json:"api_permission_ids"`
}

type CreateApiPermissionRequest struct {
	Name        string            `json:"name" binding:"required"`
	Method      models.HttpMethod `json:"method" binding:"required"`
	ApiURL      string            `json:"api_url" binding:"required"`
	Description string            `json:"description"`
	Status      bool              `json:"status"`
}

type UpdateApiPermissionRequest struct {
	Name        *string            `json:"name"`
	Method      *models.HttpMethod `json:"method"`
	ApiURL      *string            `json:"api_url"`
	Description *string            `json:"description"`
	Status      *bool              `json:"status"`
}

type CreatePagePermissionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      *bool  `json:"status"`
	PageURL     string `json:"page_url" binding:"required"`
}

type UpdatePagePermissionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *bool   `json:"status"`
	PageURL     *string `json:"page_url"`
}

// LinkRequest carries the target ids for a mapping operation.
type LinkRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

func toSubscriptionResponse(sub *models.Subscription) *SubscriptionResponse {
	resp := &SubscriptionResponse{
		ID:               sub.ID,
		Name:             sub.Name,
		Validity:         sub.Validity,
		Cost:             sub.Cost,
		ActiveStatus:     sub.ActiveStatus,
		SubscriptionType: sub.SubscriptionType,
		Services:         make([]ServiceResponse, 0, len(sub.Services)),
	}
	for i := range sub.Services {
		resp.Services = append(resp.Services, *toServiceResponse(&sub.Services[i]))
	}
	return resp
}

func toServiceResponse(svc *models.Service) *ServiceResponse {
	resp := &ServiceResponse{
		ID:              svc.ID,
		Name:            svc.Name,
		Description:     svc.Description,
		ActiveStatus:    svc.ActiveStatus,
		ApiPermissions:  make([]ApiPermissionResponse, 0, len(svc.ApiPermissions)),
		PagePermissions: make([]PagePermissionResponse, 0, len(svc.PagePermissions)),
	}
	for i := range svc.ApiPermissions {
		resp.ApiPermissions = append(resp.ApiPermissions, toApiPermissionResponse(&svc.ApiPermissions[i]))
	}
	for i := range svc.PagePermissions {
		resp.PagePermissions = append(resp.PagePermissions, toPagePermissionResponse(&svc.PagePermissions[i]))
	}
	return resp
}

func toApiPermissionResponse(p *models.ApiPermission) ApiPermissionResponse {
	return ApiPermissionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Method:      p.Method,
		ApiURL:      p.ApiURL,
		Description: p.Description,
		Status:      p.Status,
	}
}

func toPagePermissionResponse(p *models.PagePermission) PagePermissionResponse {
	return PagePermissionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		PageURL:     p.PageURL,
	}
}
