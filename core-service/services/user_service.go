package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"entitlement-backend/shared/config"
	"entitlement-backend/shared/database"
	"entitlement-backend/shared/database/models"
	"entitlement-backend/shared/utils/apperrors"
	"entitlement-backend/shared/utils/cache"
	"entitlement-backend/shared/utils/logger"
	"entitlement-backend/shared/utils/query"
)

// permissionRecordName is the name stored on every compiled permission
// record.
const permissionRecordName = "API_USER"

// userSearchFields are the joined columns the free-text user search
// matches against. Identifiers are double-quoted because "user" is a
// reserved word in postgres.
var userSearchFields = []string{
	`"user".first_name`,
	`"user".last_name`,
	`"user".email_id`,
	`"user".mobile_no`,
	"address.address_line1",
	"address.address_line2",
	"address.city",
	"address.state",
	"address.country",
	"address.pincode",
	"organization.organization_name",
	"organization.display_name",
	"organization.gstin",
	"organization.pan",
	"organization.tan",
	"organization.organization_type",
	"organization.cin",
}

// UserService owns the user aggregate: registration of an organization
// admin, creation of additional organization users, lifecycle updates,
// the conditional organization cascade on delete, and the permission
// document read path.
type UserService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:  db,
		log: logger.For("user-service"),
	}
}

// userGraph loads the full aggregate every user read returns.
func userGraph(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Address").
		Preload("Login").
		Preload("Role").
		Preload("Permission").
		Preload("Organization.OrganizationSubscription.Subscription.Services.ApiPermissions").
		Preload("Organization.OrganizationSubscription.Subscription.Services.PagePermissions")
}

func fetchUserGraph(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := userGraph(tx).First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound(fmt.Sprintf("user with id %d not found", id))
		}
		return nil, apperrors.NewStore("failed to load user", err)
	}
	return &user, nil
}

// userFieldTaken checks a unique user column, excluding one id so
// updates do not conflict with the user's own row.
func userFieldTaken(tx *gorm.DB, column, value string, excludeID uint) (bool, error) {
	var count int64
	q := tx.Model(&models.User{}).Where(fmt.Sprintf("%s = ?", column), value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func organizationFieldTaken(tx *gorm.DB, column, value string, excludeID uint) (bool, error) {
	var count int64
	q := tx.Model(&models.Organization{}).Where(fmt.Sprintf("%s = ?", column), value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// generateCustomerID produces the next six digit customer number from
// the most recently created user.
func generateCustomerID(tx *gorm.DB) (string, error) {
	var last string
	err := tx.Model(&models.User{}).
		Order("id DESC").
		Limit(1).
		Pluck("customer_id", &last).Error
	if err != nil {
		return "", err
	}

	next := 1
	if last != "" {
		if parsed, perr := strconv.Atoi(last); perr == nil {
			next = parsed + 1
		}
	}
	return fmt.Sprintf("%06d", next), nil
}

const (
	passwordLength   = 8
	lowercaseChars   = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars       = "0123456789"
	punctuationChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// generatePassword builds the initial login password: eight characters
// with at least one lowercase, uppercase, digit and punctuation char.
func generatePassword() string {
	pick := func(set string) byte { return set[rand.IntN(len(set))] }

	all := lowercaseChars + uppercaseChars + digitChars + punctuationChars
	password := []byte{
		pick(lowercaseChars),
		pick(uppercaseChars),
		pick(digitChars),
		pick(punctuationChars),
	}
	for len(password) < passwordLength {
		password = append(password, pick(all))
	}
	rand.Shuffle(len(password), func(i, j int) {
		password[i], password[j] = password[j], password[i]
	})
	return string(password)
}

func newAddress(req *AddressRequest) *models.Address {
	return &models.Address{
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		Pincode:      req.Pincode,
	}
}

// Register creates the first user of an organization: the organization
// itself, its subscription record, the user's address and login, the
// user with the admin role, and the compiled permission document, all
// in one transaction.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	cfg := config.GetConfig()

	var userID uint
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		userChecks := map[string]string{
			"email_id":  req.EmailID,
			"mobile_no": req.MobileNo,
		}
		for column, value := range userChecks {
			taken, err := userFieldTaken(tx, column, value, 0)
			if err != nil {
				return apperrors.NewStore("failed to check user uniqueness", err)
			}
			if taken {
				return apperrors.NewConflict(fmt.Sprintf("user with %s '%s' already exists", column, value))
			}
		}
		orgChecks := map[string]string{
			"gstin": req.Organization.Gstin,
			"pan":   req.Organization.Pan,
			"tan":   req.Organization.Tan,
			"cin":   req.Organization.Cin,
		}
		for column, value := range orgChecks {
			taken, err := organizationFieldTaken(tx, column, value, 0)
			if err != nil {
				return apperrors.NewStore("failed to check organization uniqueness", err)
			}
			if taken {
				return apperrors.NewConflict(fmt.Sprintf("organization with %s '%s' already exists", column, value))
			}
		}

		var role models.Role
		if err := tx.Where("role = ?", cfg.RoleAdmin).First(&role).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("role '%s' not found", cfg.RoleAdmin))
			}
			return apperrors.NewStore("failed to load admin role", err)
		}

		var subscription models.Subscription
		err := tx.
			Preload("Services.ApiPermissions").
			First(&subscription, req.SubscriptionID).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("subscription with id %d not found", req.SubscriptionID))
			}
			return apperrors.NewStore("failed to load subscription", err)
		}

		address := newAddress(&req.Address)
		if err := tx.Create(address).Error; err != nil {
			return apperrors.NewStore("failed to create address", err)
		}

		login := &models.Login{
			Username:      req.EmailID,
			Password:      generatePassword(),
			AccountActive: true,
		}
		if err := tx.Create(login).Error; err != nil {
			return apperrors.FromStore("failed to create login", err)
		}

		organization := &models.Organization{
			OrganizationName:  req.Organization.OrganizationName,
			DisplayName:       req.Organization.DisplayName,
			Gstin:             req.Organization.Gstin,
			Pan:               req.Organization.Pan,
			Tan:               req.Organization.Tan,
			OrganizationType:  req.Organization.OrganizationType,
			IncorporationDate: req.Organization.IncorporationDate,
			Cin:               req.Organization.Cin,
		}
		if err := tx.Create(organization).Error; err != nil {
			return apperrors.FromStore("failed to create organization", err)
		}

		orgSubscription := &models.OrganizationSubscription{
			SubscriptionDate: time.Now().UTC(),
			SubscriptionID:   subscription.ID,
			OrganizationID:   organization.ID,
		}
		if err := tx.Create(orgSubscription).Error; err != nil {
			return apperrors.NewStore("failed to create organization subscription", err)
		}

		customerID, err := generateCustomerID(tx)
		if err != nil {
			return apperrors.NewStore("failed to generate customer id", err)
		}

		user := &models.User{
			CustomerID:     customerID,
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			EmailID:        req.EmailID,
			MobileNo:       req.MobileNo,
			LoginID:        &login.ID,
			RoleID:         &role.ID,
			OrganizationID: &organization.ID,
			AddressID:      &address.ID,
		}
		if err := tx.Create(user).Error; err != nil {
			return apperrors.FromStore("failed to create user", err)
		}

		address.ReferenceID = strconv.FormatUint(uint64(user.ID), 10)
		if err := tx.Save(address).Error; err != nil {
			return apperrors.NewStore("failed to update address reference", err)
		}

		// Compile the permission document from the graph just wired up.
		orgSubscription.Subscription = &subscription
		organization.OrganizationSubscription = orgSubscription
		user.Organization = organization

		document, err := MarshalPermissionDocument(CompilePermissionDocument(user))
		if err != nil {
			return apperrors.NewStore("failed to serialize permission document", err)
		}
		permission := &models.Permission{
			PermissionName: permissionRecordName,
			Document:       document,
			UserID:         &user.ID,
		}
		if err := tx.Create(permission).Error; err != nil {
			return apperrors.NewStore("failed to create permission record", err)
		}

		userID = user.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", userID).Msg("organization admin registered")
	return s.GetByID(ctx, userID)
}

// CreateUser creates an additional user inside an existing admin's
// organization. The new user gets the default user role and a copy of
// the admin's permission document.
func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*UserResponse, error) {
	cfg := config.GetConfig()

	var userID uint
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		userChecks := map[string]string{
			"email_id":  req.EmailID,
			"mobile_no": req.MobileNo,
		}
		for column, value := range userChecks {
			taken, err := userFieldTaken(tx, column, value, 0)
			if err != nil {
				return apperrors.NewStore("failed to check user uniqueness", err)
			}
			if taken {
				return apperrors.NewConflict(fmt.Sprintf("user with %s '%s' already exists", column, value))
			}
		}

		var role models.Role
		if err := tx.Where("role = ?", cfg.RoleUser).First(&role).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("role '%s' not found", cfg.RoleUser))
			}
			return apperrors.NewStore("failed to load user role", err)
		}

		admin, err := fetchUserGraph(tx, req.AdminID)
		if err != nil {
			return err
		}
		if admin.OrganizationID == nil {
			return apperrors.NewValidation(fmt.Sprintf("user with id %d has no organization", req.AdminID))
		}
		if admin.Permission == nil {
			return apperrors.NewValidation(fmt.Sprintf("user with id %d has no permission record", req.AdminID))
		}

		address := newAddress(&req.Address)
		if err := tx.Create(address).Error; err != nil {
			return apperrors.NewStore("failed to create address", err)
		}

		login := &models.Login{
			Username:      req.EmailID,
			Password:      generatePassword(),
			AccountActive: true,
		}
		if err := tx.Create(login).Error; err != nil {
			return apperrors.FromStore("failed to create login", err)
		}

		customerID, err := generateCustomerID(tx)
		if err != nil {
			return apperrors.NewStore("failed to generate customer id", err)
		}

		user := &models.User{
			CustomerID:     customerID,
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			EmailID:        req.EmailID,
			MobileNo:       req.MobileNo,
			LoginID:        &login.ID,
			RoleID:         &role.ID,
			OrganizationID: admin.OrganizationID,
			AddressID:      &address.ID,
		}
		if err := tx.Create(user).Error; err != nil {
			return apperrors.FromStore("failed to create user", err)
		}

		address.ReferenceID = strconv.FormatUint(uint64(user.ID), 10)
		if err := tx.Save(address).Error; err != nil {
			return apperrors.NewStore("failed to update address reference", err)
		}

		permission := &models.Permission{
			PermissionName: admin.Permission.PermissionName,
			Document:       admin.Permission.Document,
			UserID:         &user.ID,
		}
		if err := tx.Create(permission).Error; err != nil {
			return apperrors.NewStore("failed to create permission record", err)
		}

		userID = user.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", userID).Uint("admin_id", req.AdminID).Msg("organization user created")
	return s.GetByID(ctx, userID)
}

// UpdateUser patches a user's own fields and address. The organization
// block is applied only when the user holds the admin role; for other
// roles it is ignored.
func (s *UserService) UpdateUser(ctx context.Context, id uint, req *UpdateUserRequest) (*UserResponse, error) {
	cfg := config.GetConfig()

	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		user, err := fetchUserGraph(tx, id)
		if err != nil {
			return err
		}

		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		if req.MobileNo != nil {
			taken, err := userFieldTaken(tx, "mobile_no", *req.MobileNo, id)
			if err != nil {
				return apperrors.NewStore("failed to check user uniqueness", err)
			}
			if taken {
				return apperrors.NewConflict(fmt.Sprintf("user with mobile_no '%s' already exists", *req.MobileNo))
			}
			user.MobileNo = *req.MobileNo
		}

		if req.Address != nil && user.Address != nil {
			addr := user.Address
			if req.Address.AddressLine1 != nil {
				addr.AddressLine1 = *req.Address.AddressLine1
			}
			if req.Address.AddressLine2 != nil {
				addr.AddressLine2 = *req.Address.AddressLine2
			}
			if req.Address.City != nil {
				addr.City = *req.Address.City
			}
			if req.Address.State != nil {
				addr.State = *req.Address.State
			}
			if req.Address.Country != nil {
				addr.Country = *req.Address.Country
			}
			if req.Address.Pincode != nil {
				addr.Pincode = *req.Address.Pincode
			}
			if err := tx.Save(addr).Error; err != nil {
				return apperrors.NewStore("failed to update address", err)
			}
		}

		isAdmin := user.Role != nil && user.Role.Name == cfg.RoleAdmin
		if req.Organization != nil && isAdmin && user.Organization != nil {
			if err := s.patchOrganization(tx, user.Organization, req.Organization); err != nil {
				return err
			}
		}

		if err := tx.Save(user).Error; err != nil {
			return apperrors.FromStore("failed to update user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.GetCacheManager().InvalidateUser(ctx, id)
	return s.GetByID(ctx, id)
}

func (s *UserService) patchOrganization(tx *gorm.DB, org *models.Organization, req *UpdateOrganizationRequest) error {
	identifierChecks := map[string]*string{
		"gstin": req.Gstin,
		"pan":   req.Pan,
		"tan":   req.Tan,
		"cin":   req.Cin,
	}
	for column, value := range identifierChecks {
		if value == nil {
			continue
		}
		taken, err := organizationFieldTaken(tx, column, *value, org.ID)
		if err != nil {
			return apperrors.NewStore("failed to check organization uniqueness", err)
		}
		if taken {
			return apperrors.NewConflict(fmt.Sprintf("organization with %s '%s' already exists", column, *value))
		}
	}

	if req.OrganizationName != nil {
		org.OrganizationName = *req.OrganizationName
	}
	if req.DisplayName != nil {
		org.DisplayName = *req.DisplayName
	}
	if req.Gstin != nil {
		org.Gstin = *req.Gstin
	}
	if req.Pan != nil {
		org.Pan = *req.Pan
	}
	if req.Tan != nil {
		org.Tan = *req.Tan
	}
	if req.OrganizationType != nil {
		org.OrganizationType = *req.OrganizationType
	}
	if req.IncorporationDate != nil {
		org.IncorporationDate = req.IncorporationDate
	}
	if req.Cin != nil {
		org.Cin = *req.Cin
	}

	if err := tx.Save(org).Error; err != nil {
		return apperrors.FromStore("failed to update organization", err)
	}
	return nil
}

// DeleteUser removes a user and its owned records. The organization is
// deleted only when no other user is mapped to it; otherwise the user
// is merely unlinked and the organization survives.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var user models.User
		err := tx.
			Preload("Address").
			Preload("Login").
			Preload("Permission").
			Preload("Organization.OrganizationSubscription").
			First(&user, id).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NewNotFound(fmt.Sprintf("user with id %d not found", id))
			}
			return apperrors.NewStore("failed to load user", err)
		}

		// The organization is shared when more than one user maps to it;
		// in that case it must survive the delete.
		organizationShared := false
		if user.OrganizationID != nil {
			var sharers int64
			if err := tx.Model(&models.User{}).Where("organization_id = ?", *user.OrganizationID).Count(&sharers).Error; err != nil {
				return apperrors.NewStore("failed to count organization users", err)
			}
			organizationShared = sharers > 1
		}

		// Rows referencing the user go first, then the user itself, then
		// the rows the user references.
		if user.Permission != nil {
			if err := tx.Delete(user.Permission).Error; err != nil {
				return apperrors.NewStore("failed to delete permission record", err)
			}
		}
		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return apperrors.NewStore("failed to delete user", err)
		}
		if user.Login != nil {
			if err := tx.Delete(user.Login).Error; err != nil {
				return apperrors.NewStore("failed to delete login", err)
			}
		}
		if user.Address != nil {
			if err := tx.Delete(user.Address).Error; err != nil {
				return apperrors.NewStore("failed to delete address", err)
			}
		}

		if user.Organization != nil && !organizationShared {
			if user.Organization.OrganizationSubscription != nil {
				if err := tx.Delete(user.Organization.OrganizationSubscription).Error; err != nil {
					return apperrors.NewStore("failed to delete organization subscription", err)
				}
			}
			if err := tx.Delete(user.Organization).Error; err != nil {
				return apperrors.NewStore("failed to delete organization", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.GetCacheManager().InvalidateUser(ctx, id)
	s.log.Info().Uint("user_id", id).Msg("user deleted")
	return nil
}

// GetByID returns one user with the full graph.
func (s *UserService) GetByID(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := fetchUserGraph(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// GetByUsername resolves a user through its login name.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*UserResponse, error) {
	var user models.User
	err := userGraph(s.db.WithContext(ctx)).
		Joins(`JOIN login ON login.id = "user".login_id`).
		Where("login.username = ?", username).
		First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound(fmt.Sprintf("user with username '%s' not found", username))
		}
		return nil, apperrors.NewStore("failed to load user", err)
	}
	return toUserResponse(&user), nil
}

// GetUsersByRole returns all users holding one role.
func (s *UserService) GetUsersByRole(ctx context.Context, roleID uint) ([]UserResponse, error) {
	var users []models.User
	err := userGraph(s.db.WithContext(ctx)).
		Where("role_id = ?", roleID).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, apperrors.NewStore("failed to load users by role", err)
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *toUserResponse(&users[i]))
	}
	return out, nil
}

// List returns a page of users, optionally filtered by a free-text
// search across user, address and organization columns. Count and fetch
// run in the same transaction so the total matches the page.
func (s *UserService) List(ctx context.Context, params query.PageParams) (*query.PagedResult[UserResponse], error) {
	result := &query.PagedResult[UserResponse]{Data: []UserResponse{}}

	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		base := tx.Model(&models.User{}).
			Joins(`LEFT JOIN address ON address.id = "user".address_id`).
			Joins(`LEFT JOIN organization ON organization.id = "user".organization_id`)
		base = query.ApplySearch(base, params.SearchKey, userSearchFields)

		var total int64
		if err := base.Session(&gorm.Session{}).Distinct(`"user".id`).Count(&total).Error; err != nil {
			return apperrors.NewStore("failed to count users", err)
		}

		var users []models.User
		pageQuery := userGraph(base.Session(&gorm.Session{})).
			Select(`"user".*`).
			Order(`"user".id`)
		pageQuery = query.ApplyPagination(pageQuery, params.Page, params.Size)
		if err := pageQuery.Find(&users).Error; err != nil {
			return apperrors.NewStore("failed to list users", err)
		}

		for i := range users {
			result.Data = append(result.Data, *toUserResponse(&users[i]))
		}
		result.TotalElements = total
		result.TotalPages = query.TotalPages(total, params.Size)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetUserPermissionDocument returns the user's effective entitlements.
// The document is recompiled from the current subscription graph on
// every cache miss and written back to the user's permission record, so
// the stored blob never drifts from the graph.
func (s *UserService) GetUserPermissionDocument(ctx context.Context, userID uint) (json.RawMessage, error) {
	if doc, ok := cache.GetCacheManager().GetPermissionDocument(ctx, userID); ok {
		return json.RawMessage(doc), nil
	}

	var document string
	err := database.RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		user, err := fetchUserGraph(tx, userID)
		if err != nil {
			return err
		}

		document, err = MarshalPermissionDocument(CompilePermissionDocument(user))
		if err != nil {
			return apperrors.NewStore("failed to serialize permission document", err)
		}

		if user.Permission != nil {
			user.Permission.Document = document
			if err := tx.Save(user.Permission).Error; err != nil {
				return apperrors.NewStore("failed to store permission document", err)
			}
		} else {
			permission := &models.Permission{
				PermissionName: permissionRecordName,
				Document:       document,
				UserID:         &user.ID,
			}
			if err := tx.Create(permission).Error; err != nil {
				return apperrors.NewStore("failed to create permission record", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.GetCacheManager().SetPermissionDocument(ctx, userID, document)
	return json.RawMessage(document), nil
}
