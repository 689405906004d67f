package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges email and password for a token and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	if err := r.session.Login(ctx, cmd.String("email"), cmd.String("password")); err != nil {
		return err
	}

	user, _ := r.session.User()
	return r.writePlain("✓ Logged in as %s\n", user.Email)
}

// AuthLogout clears the persisted session. Logging out while anonymous succeeds.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	if err := r.session.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus reports the session state and, for JWT tokens, the issuer and expiry.
//
// The claims are decoded locally without verifying the signature; the server remains the judge of validity.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	snap := r.session.Snapshot()
	if !snap.Authenticated() {
		return r.writePlain("Not logged in\nAPI: %s\n", r.config.Catalog.BaseURL)
	}

	if err := r.writePlain("Logged in as %s\nAPI: %s\n", snap.User.Email, r.config.Catalog.BaseURL); err != nil {
		return err
	}

	claims, ok := r.session.Claims()
	if !ok {
		return nil
	}
	if claims.Issuer != "" {
		if err := r.writePlain("Issuer: %s\n", claims.Issuer); err != nil {
			return err
		}
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		if remaining := time.Until(exp); remaining > 0 {
			return r.writePlain("Expires: %s (in %s)\n", exp.Local().Format(time.RFC1123), remaining.Round(time.Second))
		}
		return r.writePlain("Expires: %s (expired, the next request will log you out)\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}
