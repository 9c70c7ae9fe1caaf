package ftpdb

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteInMemoryDSN is a shared-cache in-memory database, used by tests.
const SqliteInMemoryDSN = "file::memory:?cache=shared"

func MakeDSNFromEnv() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		os.Getenv("DB_USERNAME"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_DATABASE"))
}

// Open opens a database of the given type ("sqlite" or "mysql"). For mysql an
// empty dsn is built from the DB_* environment variables.
func Open(dbType, dsn string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	switch dbType {
	case "", "sqlite":
		if dsn == "" {
			dsn = SqliteInMemoryDSN
		}
		return openSqlite(dsn, gormConfig)
	case "mysql":
		if dsn == "" {
			dsn = MakeDSNFromEnv()
		}
		return gorm.Open(mysql.Open(dsn), gormConfig)
	default:
		return nil, fmt.Errorf("unknown database type %q", dbType)
	}
}

// openSqlite limits in-memory databases to one connection; a shared cache
// database otherwise reports its tables as locked under concurrent writers.
func openSqlite(dsn string, gormConfig *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, err
	}

	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

const maxDBRetries = 5

// MustConnectToDB will attempt to connect to the database maxDBRetries times. If it isn't successful
// after that number of retries then it will call log.Fatalf(), which will cause the process to exit.
// Between retry attempts it will sleep for 3 seconds.
func MustConnectToDB(dbType, dsn string) *gorm.DB {
	retryCount := 1
	for {
		db, err := Open(dbType, dsn)
		switch {
		case err == nil:
			return db
		case retryCount >= maxDBRetries:
			log.Fatalf("Failed to open %s db: %s", dbType, err)
		default:
			retryCount++
			time.Sleep(3 * time.Second)
		}
	}
}

// RunMigrations creates or updates the user, group and rule tables.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(&ftpmodel.Group{}, &ftpmodel.User{}, &ftpmodel.PathRule{})
}
