package app

import (
	"context"
	"log/slog"

	"warden/cmd/identity"
)

// Bootstrap seeds the configured account if it does not exist yet.
//
// The step is idempotent: when the email is already registered it logs
// and returns nil, so restarts never fail on an existing seed. A lost
// race against a concurrent register of the same email is treated the
// same way.
func Bootstrap(ctx context.Context, log *slog.Logger, manager *identity.Manager, cfg Config) error {
	if !cfg.BootstrapEnabled() {
		return nil
	}

	acc, err := manager.Register(ctx, cfg.BootstrapName, cfg.BootstrapEmail, cfg.BootstrapPassword)
	if err != nil {
		if identity.IsConflict(err) {
			log.Info("bootstrap.skip.exists", "email", cfg.BootstrapEmail)
			return nil
		}
		return err
	}

	log.Info("bootstrap.created", "account_id", acc.ID, "email", cfg.BootstrapEmail)
	return nil
}
