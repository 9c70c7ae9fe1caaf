package stor

import (
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
	"gorm.io/gorm"
)

type UserStor interface {
	CreateUser(user *ftpmodel.User) (*ftpmodel.User, error)
	GetUserByName(name string) (*ftpmodel.User, error)
	GetUserByID(uid int) (*ftpmodel.User, error)
	ListUsers() ([]ftpmodel.User, error)
	// DeleteUserByName removes the user record and returns it as it was
	// before removal, so callers can act on the uid afterwards.
	DeleteUserByName(name string) (*ftpmodel.User, error)
}

type GroupStor interface {
	CreateGroup(group *ftpmodel.Group) (*ftpmodel.Group, error)
	GetGroupByName(name string) (*ftpmodel.Group, error)
	GetGroupByID(gid int) (*ftpmodel.Group, error)
	ListGroups() ([]ftpmodel.Group, error)
}

type PathRuleStor interface {
	CreatePathRule(rule *ftpmodel.PathRule) (*ftpmodel.PathRule, error)
	ListPathRules() ([]ftpmodel.PathRule, error)
}

type Stors struct {
	UserStor     UserStor
	GroupStor    GroupStor
	PathRuleStor PathRuleStor
}

func NewGormStors(db *gorm.DB) *Stors {
	return &Stors{
		UserStor:     NewGormUserStor(db),
		GroupStor:    NewGormGroupStor(db),
		PathRuleStor: NewGormPathRuleStor(db),
	}
}
