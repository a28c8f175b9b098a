package db

import (
	"fmt"

	mysqlcfg "github.com/go-sql-driver/mysql"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Instance *gorm.DB

// Open connects to MySQL when mysqlDSN is set, otherwise to the SQLite file
func Open(mysqlDSN, sqliteFile string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if mysqlDSN != "" {
		cfg, err := mysqlcfg.ParseDSN(mysqlDSN)
		if err != nil {
			return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
		}
		log.Printf("Using MySQL database %s at %s", cfg.DBName, cfg.Addr)
		dialector = mysql.Open(mysqlDSN)
	} else if sqliteFile != "" {
		log.Printf("Using SQLite database %s", sqliteFile)
		dialector = sqlite.Open(sqliteFile)
	} else {
		return nil, fmt.Errorf("no database configured")
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func Init(mysqlDSN, sqliteFile string) {
	db, err := Open(mysqlDSN, sqliteFile)
	if err != nil || db == nil {
		panic(err)
	}
	Instance = db
}
