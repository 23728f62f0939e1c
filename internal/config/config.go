package config

import (
	"fmt"
)

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	IdentityDBPath string
	UploadDir      string
	AllowedOrigins []string
}

const defaultUploadDir = "uploads"

func NewConfig(serverAddr, databaseDSN, identityDBPath, uploadDir string, allowedOrigins []string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if identityDBPath == "" {
		return nil, fmt.Errorf("identity database path cannot be empty")
	}
	if uploadDir == "" {
		uploadDir = defaultUploadDir
	}

	return &Config{
		ServerAddr:     serverAddr,
		DatabaseDSN:    databaseDSN,
		IdentityDBPath: identityDBPath,
		UploadDir:      uploadDir,
		AllowedOrigins: allowedOrigins,
	}, nil
}
