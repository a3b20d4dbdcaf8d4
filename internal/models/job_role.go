package models

import "github.com/google/uuid"

type JobRole struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`

	// Relations
	Sessions []InterviewSession `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (JobRole) TableName() string {
	return "job_roles"
}
