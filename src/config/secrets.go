package config

import "fmt"

// SecretFetcher resolves a secret id to its plain text value.
type SecretFetcher interface {
	GetSecretValue(secretId string) (string, error)
}

// ResolveSecrets replaces secret references in cfg with their values.
func ResolveSecrets(cfg *Config, fetcher SecretFetcher) error {
	sql := &cfg.Databases.SQL
	if sql.PasswordSecretID == "" {
		return nil
	}
	if fetcher == nil {
		return fmt.Errorf("secret %s configured but no secret fetcher available", sql.PasswordSecretID)
	}
	password, err := fetcher.GetSecretValue(sql.PasswordSecretID)
	if err != nil {
		return fmt.Errorf("failed to resolve database password: %w", err)
	}
	sql.Password = password
	return nil
}
