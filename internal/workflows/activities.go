package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
)

// GeozoneStore is the slice of the geozone service the activities drive.
type GeozoneStore interface {
	Store(ctx context.Context, in domain.GeozoneInput) (*domain.Geozone, error)
	InvalidateCache(ctx context.Context) error
	Announce(ctx context.Context, gz *domain.Geozone) error
	Delete(ctx context.Context, id string) error
}

// ProvisioningActivities holds the activity implementations for GeozoneProvisioningWorkflow.
type ProvisioningActivities struct {
	Geozones GeozoneStore
	Logger   *slog.Logger
}

func (a *ProvisioningActivities) logger() *slog.Logger {
	return logging.Component(a.Logger, "provisioning")
}

// StoreGeozone validates and persists the geozone. Validation failures are
// not retried.
func (a *ProvisioningActivities) StoreGeozone(ctx context.Context, in domain.GeozoneInput) (domain.Geozone, error) {
	gz, err := a.Geozones.Store(ctx, in)
	if errors.Is(err, domain.ErrValidation) {
		return domain.Geozone{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeValidation, err)
	}
	if err != nil {
		return domain.Geozone{}, fmt.Errorf("store geozone: %w", err)
	}
	return *gz, nil
}

// InvalidateGeozoneCache drops the cached geozone list.
func (a *ProvisioningActivities) InvalidateGeozoneCache(ctx context.Context) error {
	if err := a.Geozones.InvalidateCache(ctx); err != nil {
		return fmt.Errorf("invalidate geozone cache: %w", err)
	}
	return nil
}

// AnnounceGeozone publishes the geozone.created event.
func (a *ProvisioningActivities) AnnounceGeozone(ctx context.Context, gz domain.Geozone) error {
	if err := a.Geozones.Announce(ctx, &gz); err != nil {
		return fmt.Errorf("announce geozone %s: %w", gz.ID, err)
	}
	return nil
}

// DeleteGeozone removes a geozone (saga compensation / rollback).
func (a *ProvisioningActivities) DeleteGeozone(ctx context.Context, id string) error {
	if err := a.Geozones.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete geozone %s: %w", id, err)
	}
	a.logger().Info("geozone deleted (saga compensation)", "geozone_id", id)
	return nil
}
