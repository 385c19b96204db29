// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognised key files are listed in Known. Other files are loaded but unused.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Secret file names.
const (
	PubMedAPIKey = "pubmed-api-key"
	PubMedEmail  = "pubmed-email"
	S3AccessKey  = "s3-access-key"
	S3SecretKey  = "s3-secret-key"
	AgentURL     = "agent-url"
)

// Known lists the secret files the CLI reads.
var Known = []string{PubMedAPIKey, PubMedEmail, S3AccessKey, S3SecretKey, AgentURL}

// Secrets maps file names to values.
type Secrets map[string]string

// Or returns value when it is non-empty, otherwise the secret for key.
// Explicit configuration always beats a secret file.
func (s Secrets) Or(key, value string) string {
	if value != "" {
		return value
	}
	return s[key]
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, logger *zap.Logger) (Secrets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
