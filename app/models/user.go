package models

import "time"

// User is a registered account. Users are never updated or deleted.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"` // hashed, never serialised
	Role      string    `gorm:"size:50;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every model the schema is built from.
func All() []interface{} {
	return []interface{}{&User{}, &Product{}}
}
