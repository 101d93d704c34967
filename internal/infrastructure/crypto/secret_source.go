package crypto

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"

	"github.com/turtacn/stockwatch/internal/config"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// SecretSource resolves the HMAC signing secret at startup.
type SecretSource interface {
	SigningSecret(ctx context.Context) ([]byte, error)
}

// StaticSecret is a secret taken directly from configuration.
type StaticSecret []byte

// SigningSecret implements SecretSource.
func (s StaticSecret) SigningSecret(context.Context) ([]byte, error) {
	if len(s) == 0 {
		return nil, errors.ErrInvalidConfig.WithMetadata("field", "auth.secret")
	}
	return []byte(s), nil
}

type vaultSecretSource struct {
	client     *vault.Client
	mountPath  string
	secretPath string
	secretKey  string
	log        logger.Logger
}

// NewVaultSecretSource reads the secret from a KV v2 engine.
func NewVaultSecretSource(cfg *config.VaultConfig, log logger.Logger) (SecretSource, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, err
	}
	client.SetToken(cfg.Token)

	return newVaultSecretSource(client, cfg, log), nil
}

func newVaultSecretSource(client *vault.Client, cfg *config.VaultConfig, log logger.Logger) *vaultSecretSource {
	return &vaultSecretSource{
		client:     client,
		mountPath:  cfg.MountPath,
		secretPath: cfg.SecretPath,
		secretKey:  cfg.SecretKey,
		log:        log,
	}
}

func (v *vaultSecretSource) SigningSecret(ctx context.Context) ([]byte, error) {
	secret, err := v.client.KVv2(v.mountPath).Get(ctx, v.secretPath)
	if err != nil {
		v.log.Error(ctx, "Failed to read signing secret from Vault", err, logger.String("path", v.secretPath))
		return nil, errors.ErrInvalidConfig.WithCause(err).WithMetadata("field", "vault.secret_path")
	}
	if secret == nil || secret.Data == nil {
		return nil, errors.ErrInvalidConfig.WithMetadata("field", "vault.secret_path")
	}

	value, ok := secret.Data[v.secretKey].(string)
	if !ok || value == "" {
		return nil, errors.ErrInvalidConfig.
			WithCause(fmt.Errorf("key %q missing in %s", v.secretKey, v.secretPath)).
			WithMetadata("field", "vault.secret_key")
	}
	return []byte(value), nil
}

// NewSecretSource picks Vault when enabled, otherwise the configured secret.
func NewSecretSource(cfg *config.Config, log logger.Logger) (SecretSource, error) {
	if cfg.Vault.Enabled {
		return NewVaultSecretSource(&cfg.Vault, log)
	}
	return StaticSecret(cfg.Auth.Secret), nil
}
