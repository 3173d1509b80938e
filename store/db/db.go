// Package db provides database driver construction.
package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/talentsense/internal/profile"
	"github.com/hrygo/talentsense/store"
	"github.com/hrygo/talentsense/store/db/postgres"
	"github.com/hrygo/talentsense/store/db/sqlite"
)

// NewDBDriver creates a new database driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "postgres":
		return postgres.NewDB(profile)
	case "sqlite":
		return sqlite.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver: %s", profile.Driver)
	}
}
