package ftpmodel

import "time"

// Group is a site group; ID is the gid.
type Group struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"uniqueIndex"`
	Modified  time.Time `json:"modified" gorm:"autoUpdateTime"`
	CreatedAt time.Time `json:"created_at"`
}
