package services

import (
	"encoding/json"
	"strings"

	"entitlement-backend/shared/database/models"
)

// PermissionAction is one API permission rendered into a permission
// document.
type PermissionAction struct {
	Name        string `json:"name"`
	Method      string `json:"method"`
	ApiURL      string `json:"api_url"`
	Description string `json:"description"`
	Status      bool   `json:"status"`
}

// PermissionModule is one module node inside a permission document
// bucket. ParentID is nil for root modules.
type PermissionModule struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	ParentID *string            `json:"parentId"`
	Actions  []PermissionAction `json:"actions"`
}

// PermissionDocument is the two-bucket hierarchical document consumed
// by the authorization layer.
type PermissionDocument struct {
	SubscriptionModule []PermissionModule `json:"subscription_module"`
	UserModule         []PermissionModule `json:"user_module"`
}

type bucket int

const (
	bucketSubscription bucket = iota
	bucketUser
)

// classificationRule maps a keyword found in a permission name to the
// module node the permission's action lands in.
type classificationRule struct {
	keyword    string
	moduleID   string
	moduleName string
	bucket     bucket
	parentID   *string
}

func strptr(s string) *string { return &s }

// classificationRules is evaluated in order; the first keyword contained
// in the lowercased permission name wins. A name matching no keyword is
// dropped from the document. The order matters: "user" must come before
// "role" and "permission" so a combined name like "user_role_permission"
// classifies under the user module.
var classificationRules = []classificationRule{
	{keyword: "subscription", moduleID: "subscription_01", moduleName: "Subscription Module", bucket: bucketSubscription, parentID: nil},
	{keyword: "service", moduleID: "service_01", moduleName: "Service Module", bucket: bucketSubscription, parentID: strptr("subscription_01")},
	{keyword: "api_permission", moduleID: "api_permission_01", moduleName: "API Permission Module", bucket: bucketSubscription, parentID: strptr("service_01")},
	{keyword: "user", moduleID: "user_01", moduleName: "User Module", bucket: bucketUser, parentID: nil},
	{keyword: "role", moduleID: "role_01", moduleName: "Role Module", bucket: bucketUser, parentID: strptr("user_01")},
	{keyword: "permission", moduleID: "permission_01", moduleName: "Permission Module", bucket: bucketUser, parentID: strptr("role_01")},
}

// classify returns the rule for a permission name, or nil when no
// keyword matches.
func classify(permissionName string) *classificationRule {
	lower := strings.ToLower(permissionName)
	for i := range classificationRules {
		if strings.Contains(lower, classificationRules[i].keyword) {
			return &classificationRules[i]
		}
	}
	return nil
}

// CompilePermissionDocument flattens a fully loaded user graph
// (organization -> organization subscription -> subscription -> services
// -> api permissions) into the two-bucket document. Each module id
// appears at most once per bucket; repeated matches append to the
// existing module's action list.
func CompilePermissionDocument(user *models.User) *PermissionDocument {
	doc := &PermissionDocument{
		SubscriptionModule: []PermissionModule{},
		UserModule:         []PermissionModule{},
	}

	if user == nil || user.Organization == nil ||
		user.Organization.OrganizationSubscription == nil ||
		user.Organization.OrganizationSubscription.Subscription == nil {
		return doc
	}

	sub := user.Organization.OrganizationSubscription.Subscription
	for i := range sub.Services {
		svc := &sub.Services[i]
		for j := range svc.ApiPermissions {
			perm := &svc.ApiPermissions[j]
			rule := classify(perm.Name)
			if rule == nil {
				continue
			}

			action := PermissionAction{
				Name:        perm.Name,
				Method:      string(perm.Method),
				ApiURL:      perm.ApiURL,
				Description: perm.Description,
				Status:      perm.Status,
			}

			target := &doc.SubscriptionModule
			if rule.bucket == bucketUser {
				target = &doc.UserModule
			}
			appendAction(target, rule, action)
		}
	}

	return doc
}

func appendAction(modules *[]PermissionModule, rule *classificationRule, action PermissionAction) {
	for i := range *modules {
		if (*modules)[i].ID == rule.moduleID {
			(*modules)[i].Actions = append((*modules)[i].Actions, action)
			return
		}
	}
	*modules = append(*modules, PermissionModule{
		ID:       rule.moduleID,
		Name:     rule.moduleName,
		ParentID: rule.parentID,
		Actions:  []PermissionAction{action},
	})
}

// MarshalPermissionDocument serializes a document the way it is stored
// on the user's permission row.
func MarshalPermissionDocument(doc *PermissionDocument) (string, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
