package model

import (
	"time"

	"Chat_Community/internal/pkg"

	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleOrganiser = "organiser"
	RoleBusiness  = "business"
	RoleAdmin     = "admin"
)

// ValidUserRole 系统级角色
func ValidUserRole(role string) bool {
	switch role {
	case RoleUser, RoleOrganiser, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

// Location 最近一次同步的位置，按原始数据保存为字符串
type Location struct {
	X string `gorm:"column:x;size:32" bson:"location_x" json:"x"`
	Y string `gorm:"column:y;size:32" bson:"location_y" json:"y"`
}

type User struct {
	ID        string    `gorm:"primaryKey;size:24" bson:"_id" json:"id"`
	Name      string    `gorm:"size:100;not null" bson:"name" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:254;not null" bson:"email" json:"email"`
	Password  string    `gorm:"size:255;not null" bson:"password" json:"-"`
	Approved  bool      `gorm:"not null;default:false" bson:"approved" json:"approved"`
	Role      string    `gorm:"size:16;not null;default:user" bson:"role" json:"role"`
	Address   *string   `gorm:"size:255" bson:"address,omitempty" json:"address,omitempty"`
	Gender    *string   `gorm:"size:32" bson:"gender,omitempty" json:"gender,omitempty"`
	Location  Location  `gorm:"embedded;embeddedPrefix:location_" bson:",inline" json:"last_synced_location"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = pkg.NewID()
	}
	return nil
}
