// internal/domain/entity/subscription.go
package entity

import (
	"time"
)

// Subscription is a user's standing search criteria. The engine reads
// subscriptions but never writes them; ownership stays with the account
// service. Optional criteria are nullable columns: an unset criterion
// places no constraint on matching.
type Subscription struct {
	ID          int64      `gorm:"column:id;primaryKey" json:"id"`
	UserID      int64      `gorm:"column:user_id" json:"user_id"`
	Prompt      string     `gorm:"column:prompt" json:"prompt"`
	Origin      string     `gorm:"column:origin" json:"origin"`
	Destination string     `gorm:"column:destination" json:"destination"`
	MaxPrice    *float64   `gorm:"column:max_price" json:"max_price"`
	StartDate   *time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate     *time.Time `gorm:"column:end_date" json:"end_date"`
	IsActive    bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
