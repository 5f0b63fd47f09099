package storage

import (
	"time"
)

const (
	StatusUnknown = "unknown"
	StatusUp      = "up"
	StatusDown    = "down"
)

// Settings keys for the admin mail account.
const (
	KeyAdminEmail    = "admin_email"
	KeyAdminPassword = "admin_password"
)

type Site struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	URL       string    `gorm:"not null;uniqueIndex" json:"url"`
	Status    string    `gorm:"default:unknown" json:"status"`
	// LastChecked moves on every cycle the site participates in.
	LastChecked *time.Time `json:"last_checked"`
	// LastStatusChange moves only on an actual transition.
	LastStatusChange *time.Time `json:"last_status_change"`
	// LastDownAt is set on entry into down and survives recovery, so
	// "was down since X" stays visible until the next outage.
	LastDownAt *time.Time `json:"last_down_at"`
}

type Setting struct {
	Key       string    `gorm:"primarykey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
