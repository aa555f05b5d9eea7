package models

type Role struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"role" gorm:"column:role;size:100;uniqueIndex;not null"`
	Description string `json:"description" gorm:"size:512"`
}

func (Role) TableName() string { return "role" }
