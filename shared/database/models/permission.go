package models

// Permission holds the compiled permission document for one user. The
// document is a JSON blob produced by the permission compiler; it is
// recomputed from the subscription graph, never patched in place.
type Permission struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	PermissionName string `json:"permission_name" gorm:"column:permission_name;size:255;index;not null"`
	Document       string `json:"permission" gorm:"column:permission;type:text"`
	UserID         *uint  `json:"user_id"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Permission) TableName() string { return "permission" }
