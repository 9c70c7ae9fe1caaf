package ftpmodel

import "time"

// User is a virtual site user. ID doubles as the user's uid; the process may
// run every user under a single OS identity, so the uid only has meaning
// inside the site.
type User struct {
	ID              int       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UUID            string    `json:"uuid"`
	Name            string    `json:"name" gorm:"uniqueIndex"`
	Slug            string    `json:"slug"`
	PrimaryGID      int       `json:"primary_gid"`
	PrimaryGroup    *Group    `json:"primary_group,omitempty" gorm:"foreignKey:PrimaryGID;references:ID"`
	SecondaryGroups []Group   `json:"secondary_groups" gorm:"many2many:user_secondary_groups;"`
	Flags           string    `json:"flags"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (u *User) UID() int {
	return u.ID
}

// InGroup reports whether gid is the user's primary or one of their secondary groups.
func (u *User) InGroup(gid int) bool {
	if u.PrimaryGID == gid {
		return true
	}

	for _, g := range u.SecondaryGroups {
		if g.ID == gid {
			return true
		}
	}

	return false
}

// InGroupNamed is InGroup by name. It only consults groups that were loaded
// with the user.
func (u *User) InGroupNamed(name string) bool {
	if u.PrimaryGroup != nil && u.PrimaryGroup.Name == name {
		return true
	}

	for _, g := range u.SecondaryGroups {
		if g.Name == name {
			return true
		}
	}

	return false
}
