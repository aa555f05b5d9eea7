package models

import "time"

type Organization struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	OrganizationName  string     `json:"organization_name" gorm:"size:255"`
	DisplayName       string     `json:"display_name" gorm:"size:255"`
	Gstin             string     `json:"gstin" gorm:"size:15;uniqueIndex;not null"`
	Pan               string     `json:"pan" gorm:"size:10;uniqueIndex;not null"`
	Tan               string     `json:"tan" gorm:"size:10;uniqueIndex;not null"`
	OrganizationType  string     `json:"organization_type" gorm:"size:100"`
	IncorporationDate *time.Time `json:"incorporation_date"`
	Cin               string     `json:"cin" gorm:"size:21;uniqueIndex;not null"`

	// Relations
	OrganizationSubscription *OrganizationSubscription `json:"organization_subscription,omitempty" gorm:"foreignKey:OrganizationID"`
}

func (Organization) TableName() string { return "organization" }

// OrganizationSubscription is the one-to-one record tying an organization
// to the subscription it holds, stamped with the date it was taken out.
type OrganizationSubscription struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	SubscriptionDate time.Time `json:"subscription_date"`
	SubscriptionID   uint      `json:"subscription_id"`
	OrganizationID   uint      `json:"organization_id" gorm:"uniqueIndex"`

	// Relations
	Subscription *Subscription `json:"subscription,omitempty" gorm:"foreignKey:SubscriptionID"`
}

func (OrganizationSubscription) TableName() string { return "organization_subscription_details" }
