package stor

import (
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
	"gorm.io/gorm"
)

type GormPathRuleStor struct {
	db *gorm.DB
}

func NewGormPathRuleStor(db *gorm.DB) *GormPathRuleStor {
	return &GormPathRuleStor{db: db}
}

func (s *GormPathRuleStor) CreatePathRule(rule *ftpmodel.PathRule) (*ftpmodel.PathRule, error) {
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(rule).Error
	})

	if err != nil {
		return nil, err
	}

	return rule, nil
}

// ListPathRules returns all rules in evaluation order.
func (s *GormPathRuleStor) ListPathRules() ([]ftpmodel.PathRule, error) {
	var rules []ftpmodel.PathRule
	result := s.db.Order("position").Order("id").Find(&rules)
	return rules, result.Error
}
