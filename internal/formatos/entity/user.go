package entity

import "time"

// User of the plant. Role holds the raw role string exactly as stored
// (superadmin, admin, gerente_produccion, produccion, calidad,
// gerente_calidad, or legacy values); workflow code never compares it
// directly, it goes through the role mapper.
type User struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	Username  string     `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	Email     string     `json:"email" gorm:"size:128"`
	Role      string     `json:"role" gorm:"size:32;not null;default:produccion"`
	Status    string     `json:"status" gorm:"size:16;not null;default:active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
