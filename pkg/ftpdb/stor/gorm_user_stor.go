package stor

import (
	"github.com/gosimple/slug"
	"github.com/hashicorp/go-uuid"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
	"gorm.io/gorm"
)

type GormUserStor struct {
	db *gorm.DB
}

func NewGormUserStor(db *gorm.DB) *GormUserStor {
	return &GormUserStor{db: db}
}

// CreateUser creates a new user. The user's UUID and Slug are generated here.
func (s *GormUserStor) CreateUser(user *ftpmodel.User) (*ftpmodel.User, error) {
	var err error

	if user.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, err
	}

	user.Slug = slug.Make(user.Name)

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Omit("PrimaryGroup").Create(user).Error
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *GormUserStor) GetUserByName(name string) (*ftpmodel.User, error) {
	var user ftpmodel.User
	if err := s.withGroups().Where("name = ?", name).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *GormUserStor) GetUserByID(uid int) (*ftpmodel.User, error) {
	var user ftpmodel.User
	if err := s.withGroups().Where("id = ?", uid).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *GormUserStor) ListUsers() ([]ftpmodel.User, error) {
	var users []ftpmodel.User
	result := s.withGroups().Order("id").Find(&users)
	return users, result.Error
}

func (s *GormUserStor) DeleteUserByName(name string) (*ftpmodel.User, error) {
	user, err := s.GetUserByName(name)
	if err != nil {
		return nil, err
	}

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		if err := tx.Model(user).Association("SecondaryGroups").Clear(); err != nil {
			return err
		}

		return tx.Delete(&ftpmodel.User{}, user.ID).Error
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *GormUserStor) withGroups() *gorm.DB {
	return s.db.Preload("PrimaryGroup").Preload("SecondaryGroups")
}
