package stor

import (
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
	"gorm.io/gorm"
)

type GormGroupStor struct {
	db *gorm.DB
}

func NewGormGroupStor(db *gorm.DB) *GormGroupStor {
	return &GormGroupStor{db: db}
}

func (s *GormGroupStor) CreateGroup(group *ftpmodel.Group) (*ftpmodel.Group, error) {
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(group).Error
	})

	if err != nil {
		return nil, err
	}

	return group, nil
}

func (s *GormGroupStor) GetGroupByName(name string) (*ftpmodel.Group, error) {
	var group ftpmodel.Group
	if err := s.db.Where("name = ?", name).First(&group).Error; err != nil {
		return nil, err
	}

	return &group, nil
}

func (s *GormGroupStor) GetGroupByID(gid int) (*ftpmodel.Group, error) {
	var group ftpmodel.Group
	if err := s.db.Where("id = ?", gid).First(&group).Error; err != nil {
		return nil, err
	}

	return &group, nil
}

func (s *GormGroupStor) ListGroups() ([]ftpmodel.Group, error) {
	var groups []ftpmodel.Group
	result := s.db.Order("id").Find(&groups)
	return groups, result.Error
}
