package models

// SubscriptionType is the validity unit of a subscription.
type SubscriptionType string

const (
	SubscriptionTypeDays  SubscriptionType = "DAYS"
	SubscriptionTypeMonth SubscriptionType = "MONTH"
	SubscriptionTypeYear  SubscriptionType = "YEAR"
)

// IsValid reports whether the value is one of the known subscription types.
func (t SubscriptionType) IsValid() bool {
	switch t {
	case SubscriptionTypeDays, SubscriptionTypeMonth, SubscriptionTypeYear:
		return true
	}
	return false
}

// HttpMethod is the HTTP verb an API permission guards.
type HttpMethod string

const (
	HttpMethodPost   HttpMethod = "POST"
	HttpMethodPut    HttpMethod = "PUT"
	HttpMethodGet    HttpMethod = "GET"
	HttpMethodDelete HttpMethod = "DELETE"
)

// IsValid reports whether the value is one of the known HTTP methods.
func (m HttpMethod) IsValid() bool {
	switch m {
	case HttpMethodPost, HttpMethodPut, HttpMethodGet, HttpMethodDelete:
		return true
	}
	return false
}

type Subscription struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	Name             string           `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Validity         int              `json:"validity"`
	Cost             int              `json:"cost"`
	ActiveStatus     bool             `json:"active_status"`
	SubscriptionType SubscriptionType `json:"subscription_type" gorm:"type:varchar(10)"`

	// Relations
	Services []Service `json:"services" gorm:"many2many:subscription_services_mapping"`
}

func (Subscription) TableName() string { return "subscription" }

type Service struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Description  string `json:"description" gorm:"size:255"`
	ActiveStatus bool   `json:"active_status"`

	// Relations
	Subscriptions   []Subscription   `json:"subscriptions,omitempty" gorm:"many2many:subscription_services_mapping"`
	ApiPermissions  []ApiPermission  `json:"api_permissions" gorm:"many2many:service_api_permissions_mapping"`
	PagePermissions []PagePermission `json:"page_permissions" gorm:"many2many:service_api_page_permissions_mapping"`
}

func (Service) TableName() string { return "subscription_service" }

type ApiPermission struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Method      HttpMethod `json:"method" gorm:"type:varchar(10)"`
	ApiURL      string     `json:"api_url" gorm:"column:api_url;size:255"`
	Description string     `json:"description" gorm:"size:255"`
	Status      bool       `json:"status"`
}

func (ApiPermission) TableName() string { return "api_permission" }

type PagePermission struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Description string `json:"description" gorm:"size:512"`
	Status      bool   `json:"status" gorm:"default:true"`
	PageURL     string `json:"page_url" gorm:"column:page_url;size:512;not null"`
}

func (PagePermission) TableName() string { return "page_permission" }

// SubscriptionServiceLink is the explicit join row between a subscription
// and a service. The pair is unique; inserts go through the mapping
// service which computes the set difference against current links first.
type SubscriptionServiceLink struct {
	ID             uint `json:"id" gorm:"primaryKey"`
	SubscriptionID uint `json:"subscription_id" gorm:"uniqueIndex:idx_subscription_service,priority:1"`
	ServiceID      uint `json:"service_id" gorm:"uniqueIndex:idx_subscription_service,priority:2"`
}

func (SubscriptionServiceLink) TableName() string { return "subscription_services_mapping" }

// ServiceApiPermissionLink joins a service to an API permission.
type ServiceApiPermissionLink struct {
	ID              uint `json:"id" gorm:"primaryKey"`
	ServiceID       uint `json:"service_id" gorm:"uniqueIndex:idx_service_api_permission,priority:1"`
	ApiPermissionID uint `json:"api_permission_id" gorm:"uniqueIndex:idx_service_api_permission,priority:2"`
}

func (ServiceApiPermissionLink) TableName() string { return "service_api_permissions_mapping" }

// ServicePagePermissionLink joins a service to a page permission.
type ServicePagePermissionLink struct {
	ID               uint `json:"id" gorm:"primaryKey"`
	ServiceID        uint `json:"service_id" gorm:"uniqueIndex:idx_service_page_permission,priority:1"`
	PagePermissionID uint `json:"page_permission_id" gorm:"uniqueIndex:idx_service_page_permission,priority:2"`
}

func (ServicePagePermissionLink) TableName() string { return "service_api_page_permissions_mapping" }
