package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const (
	KeySiteRoot     = "EBFTPD_SITE_ROOT"
	KeyFreeSpace    = "EBFTPD_FREE_SPACE"
	KeyDlIncomplete = "EBFTPD_DL_INCOMPLETE"
	KeyACLFile      = "EBFTPD_ACL_FILE"
	KeyDBType       = "EBFTPD_DB_TYPE"
	KeyDBDSN        = "EBFTPD_DB_DSN"
	KeyLogLevel     = "EBFTPD_LOG_LEVEL"
	KeyTaskQueue    = "EBFTPD_TASK_QUEUE"
)

// FTPDConfig is the typed view of the server settings the file layer and
// admin tooling need.
type FTPDConfig struct {
	// SiteRoot is the real directory the virtual tree is rooted at.
	SiteRoot string `validate:"required,dir"`

	// MinFreeMB is the free space, in MiB, that must remain on a volume
	// before an upload may start.
	MinFreeMB int `validate:"gte=0"`

	// DlIncomplete marks uploads in progress by creating them executable.
	DlIncomplete bool

	ACLFile   string `validate:"omitempty,file"`
	DBType    string `validate:"oneof=sqlite mysql"`
	DBDSN     string
	LogLevel  string `validate:"oneof=debug info warn error fatal"`
	TaskQueue int    `validate:"gte=1"`
}

var validate = validator.New()

func LoadFTPDConfig(c Configer) (*FTPDConfig, error) {
	cfg := &FTPDConfig{
		SiteRoot:     c.GetKey(KeySiteRoot),
		MinFreeMB:    c.GetIntKeyWithDefault(KeyFreeSpace, 100),
		DlIncomplete: c.GetBoolKeyWithDefault(KeyDlIncomplete, true),
		ACLFile:      c.GetKey(KeyACLFile),
		DBType:       strings.ToLower(c.GetKeyWithDefault(KeyDBType, "sqlite")),
		DBDSN:        c.GetKey(KeyDBDSN),
		LogLevel:     strings.ToLower(c.GetKeyWithDefault(KeyLogLevel, "info")),
		TaskQueue:    c.GetIntKeyWithDefault(KeyTaskQueue, 64),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, formatValidationError(err)
	}

	return cfg, nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("config %s: validation failed on '%s' (value: %v)", e.Field(), e.Tag(), e.Value())
	}

	return err
}
