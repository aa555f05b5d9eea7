package services

import (
	"encoding/json"
	"time"

	"entitlement-backend/shared/database/models"
)

// AddressRequest carries the address fields of a user payload.
type AddressRequest struct {
	AddressLine1 string `json:"address_line_1" binding:"required"`
	AddressLine2 string `json:"address_line_2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	Country      string `json:"country" binding:"required"`
	Pincode      string `json:"pincode" binding:"required"`
}

// OrganizationRequest carries the organization fields of a register
// payload.
type OrganizationRequest struct {
	OrganizationName  string     `json:"organization_name" binding:"required"`
	DisplayName       string     `json:"display_name"`
	Gstin             string     `json:"gstin" binding:"required"`
	Pan               string     `json:"pan" binding:"required"`
	Tan               string     `json:"tan" binding:"required"`
	OrganizationType  string     `json:"organization_type"`
	IncorporationDate *time.Time `json:"incorporation_date"`
	Cin               string     `json:"cin" binding:"required"`
}

// RegisterRequest creates the first (admin) user of an organization
// together with the organization itself and its subscription record.
type RegisterRequest struct {
	FirstName      string              `json:"first_name" binding:"required"`
	LastName       string              `json:"last_name" binding:"required"`
	EmailID        string              `json:"email_id" binding:"required,email"`
	MobileNo       string              `json:"mobile_no" binding:"required"`
	SubscriptionID uint                `json:"subscription_id" binding:"required"`
	Address        AddressRequest      `json:"address" binding:"required"`
	Organization   OrganizationRequest `json:"organization" binding:"required"`
}

// CreateUserRequest creates an additional user inside the organization
// of an existing admin user. The new user inherits the admin's
// organization and permission document.
type CreateUserRequest struct {
	AdminID   uint           `json:"admin_id" binding:"required"`
	FirstName string         `json:"first_name" binding:"required"`
	LastName  string         `json:"last_name" binding:"required"`
	EmailID   string         `json:"email_id" binding:"required,email"`
	MobileNo  string         `json:"mobile_no" binding:"required"`
	Address   AddressRequest `json:"address" binding:"required"`
}

// UpdateAddressRequest patches address fields; nil fields stay as they
// are.
type UpdateAddressRequest struct {
	AddressLine1 *string `json:"address_line_1"`
	AddressLine2 *string `json:"address_line_2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Country      *string `json:"country"`
	Pincode      *string `json:"pincode"`
}

// UpdateOrganizationRequest patches organization fields. Only admins may
// carry this block on a user update.
type UpdateOrganizationRequest struct {
	OrganizationName  *string    `json:"organization_name"`
	DisplayName       *string    `json:"display_name"`
	Gstin             *string    `json:"gstin"`
	Pan               *string    `json:"pan"`
	Tan               *string    `json:"tan"`
	OrganizationType  *string    `json:"organization_type"`
	IncorporationDate *time.Time `json:"incorporation_date"`
	Cin               *string    `json:"cin"`
}

// UpdateUserRequest patches a user. Every field is optional; nil means
// leave unchanged.
type UpdateUserRequest struct {
	FirstName    *string                    `json:"first_name"`
	LastName     *string                    `json:"last_name"`
	MobileNo     *string                    `json:"mobile_no"`
	Address      *UpdateAddressRequest      `json:"address"`
	Organization *UpdateOrganizationRequest `json:"organization"`
}

// LoginInfo is the login read model; the password never leaves the
// service.
type LoginInfo struct {
	ID                    uint       `json:"id"`
	Username              string     `json:"username"`
	AccountActive         bool       `json:"account_active"`
	AccountInactiveReason string     `json:"account_inactive_reason"`
	LoginTime             *time.Time `json:"login_time"`
	LogoutTime            *time.Time `json:"logout_time"`
}

// PermissionInfo carries the user's permission record with the stored
// document parsed back into JSON.
type PermissionInfo struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Document json.RawMessage `json:"permission"`
}

// UserResponse is the full user read model with the organization and
// subscription graph attached.
type UserResponse struct {
	ID           uint                 `json:"id"`
	CustomerID   string               `json:"customer_id"`
	FirstName    string               `json:"first_name"`
	LastName     string               `json:"last_name"`
	EmailID      string               `json:"email_id"`
	MobileNo     string               `json:"mobile_no"`
	Address      *models.Address      `json:"address"`
	Organization *models.Organization `json:"organization"`
	Login        *LoginInfo           `json:"login"`
	Role         *models.Role         `json:"role"`
	Permission   *PermissionInfo      `json:"permission"`
}

// CreateRoleRequest carries the writable role fields.
type CreateRoleRequest struct {
	Name        string `json:"role" binding:"required"`
	Description string `json:"description"`
}

// UpdateRoleRequest patches a role.
type UpdateRoleRequest struct {
	Name        *string `json:"role"`
	Description *string `json:"description"`
}

// UpdatePermissionRequest patches a permission record. Document, when
// set, must be valid JSON.
type UpdatePermissionRequest struct {
	Name     *string `json:"permission_name"`
	Document *string `json:"permission"`
}

func toUserResponse(user *models.User) *UserResponse {
	resp := &UserResponse{
		ID:           user.ID,
		CustomerID:   user.CustomerID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		EmailID:      user.EmailID,
		MobileNo:     user.MobileNo,
		Address:      user.Address,
		Organization: user.Organization,
		Role:         user.Role,
	}
	if user.Login != nil {
		resp.Login = &LoginInfo{
			ID:                    user.Login.ID,
			Username:              user.Login.Username,
			AccountActive:         user.Login.AccountActive,
			AccountInactiveReason: user.Login.AccountInactiveReason,
			LoginTime:             user.Login.LoginTime,
			LogoutTime:            user.Login.LogoutTime,
		}
	}
	if user.Permission != nil {
		doc := json.RawMessage("{}")
		if user.Permission.Document != "" {
			doc = json.RawMessage(user.Permission.Document)
		}
		resp.Permission = &PermissionInfo{
			ID:       user.Permission.ID,
			Name:     user.Permission.PermissionName,
			Document: doc,
		}
	}
	return resp
}
