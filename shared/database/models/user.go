package models

import "time"

type User struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	CustomerID     string `json:"customer_id" gorm:"size:50"`
	FirstName      string `json:"first_name" gorm:"size:100"`
	LastName       string `json:"last_name" gorm:"size:100"`
	EmailID        string `json:"email_id" gorm:"size:255;uniqueIndex;not null"`
	MobileNo       string `json:"mobile_no" gorm:"size:15;uniqueIndex;not null"`
	LoginID        *uint  `json:"login_id"`
	RoleID         *uint  `json:"role_id"`
	OrganizationID *uint  `json:"organization_id"`
	AddressID      *uint  `json:"address_id"`

	// Relations
	Login        *Login        `json:"login,omitempty" gorm:"foreignKey:LoginID"`
	Role         *Role         `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Address      *Address      `json:"address,omitempty" gorm:"foreignKey:AddressID"`
	Permission   *Permission   `json:"permission,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string { return "user" }

// Login is owned by exactly one user and deleted together with it.
type Login struct {
	ID                    uint       `json:"id" gorm:"primaryKey"`
	Username              string     `json:"username" gorm:"size:100;uniqueIndex"`
	Password              string     `json:"-" gorm:"size:255"`
	AccountActive         bool       `json:"account_active"`
	AccountInactiveReason string     `json:"account_inactive_reason" gorm:"size:512"`
	LoginTime             *time.Time `json:"login_time"`
	LogoutTime            *time.Time `json:"logout_time"`
}

func (Login) TableName() string { return "login" }

// Address is owned by exactly one user; reference_id carries the owning
// user id back onto the row once the user has been persisted.
type Address struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	AddressLine1 string `json:"address_line_1" gorm:"size:255"`
	AddressLine2 string `json:"address_line_2" gorm:"size:255"`
	City         string `json:"city" gorm:"size:100"`
	State        string `json:"state" gorm:"size:100"`
	Country      string `json:"country" gorm:"size:100"`
	Pincode      string `json:"pincode" gorm:"size:20"`
	ReferenceID  string `json:"reference_id" gorm:"size:255"`
}

func (Address) TableName() string { return "address" }
