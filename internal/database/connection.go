package database

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/customeros/warmup/internal/config"
)

func NewConnection(dbConfig *config.StoreConfig) (*gorm.DB, error) {
	validateConfig(dbConfig)

	sslMode := dbConfig.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	connectString := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host, dbConfig.Port, dbConfig.User, dbConfig.Password, dbConfig.DBName, sslMode)

	gormDb, err := gorm.Open(postgres.Open(connectString), &gorm.Config{
		Logger: initLog(dbConfig.LogLevel),
	})
	if err != nil {
		log.Printf("Error opening DB: %v", err)
		return nil, err
	}

	sqlDB, err := gormDb.DB()
	if err != nil {
		log.Printf("Error getting DB: %v", err)
		return nil, err
	}

	if err = sqlDB.Ping(); err != nil {
		log.Printf("Error pinging DB: %v", err)
		return nil, err
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConn)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConn)
	sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Hour)

	return gormDb, nil
}

func validateConfig(cfg *config.StoreConfig) {
	switch {
	case cfg == nil:
		log.Fatalf("store config is nil")
	case cfg.Host == "":
		log.Fatalf("store host config is empty")
	case cfg.Port == "":
		log.Fatalf("store port config is empty")
	case cfg.User == "":
		log.Fatalf("store user config is empty")
	case cfg.Password == "":
		log.Fatalf("store password config is empty")
	case cfg.DBName == "":
		log.Fatalf("store db name config is empty")
	}
}

func initLog(logLevel string) gormlogger.Interface {
	postgresLogLevel := gormlogger.Silent
	switch logLevel {
	case "ERROR":
		postgresLogLevel = gormlogger.Error
	case "WARN":
		postgresLogLevel = gormlogger.Warn
	case "INFO":
		postgresLogLevel = gormlogger.Info
	}
	newLogger := gormlogger.New(log.New(io.MultiWriter(os.Stdout), "\r\n", log.LstdFlags), gormlogger.Config{
		Colorful:      true,
		LogLevel:      postgresLogLevel,
		SlowThreshold: time.Second,
	})
	return newLogger
}
