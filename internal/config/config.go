package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port        string
	DBDSN       string
	LogFile     string
	BackupDir   string
	FinePerDay  float64
	DamageFine  float64
	MaxLoanDays int
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "pustaka.db" // sqlite file in project root
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./pustaka.log"
	}
	backupDir := os.Getenv("BACKUP_DIR")
	if backupDir == "" {
		backupDir = "./backups"
	}

	cfg := Config{
		Port:        port,
		DBDSN:       dsn,
		LogFile:     logFile,
		BackupDir:   backupDir,
		FinePerDay:  envFloat("FINE_PER_DAY", 5000),
		DamageFine:  envFloat("DAMAGE_FINE", 50000),
		MaxLoanDays: envInt("MAX_LOAN_DAYS", 30),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s BACKUP_DIR=%s FINE_PER_DAY=%.0f MAX_LOAN_DAYS=%d",
		cfg.Port, cfg.DBDSN, cfg.BackupDir, cfg.FinePerDay, cfg.MaxLoanDays)
	return cfg
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
		log.Printf("[config] ignoring invalid %s=%q", key, v)
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("[config] ignoring invalid %s=%q", key, v)
	}
	return def
}
