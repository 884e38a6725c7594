package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
)

// Activity names registered by the provisioner worker.
const (
	ActivityStoreGeozone           = "StoreGeozone"
	ActivityInvalidateGeozoneCache = "InvalidateGeozoneCache"
	ActivityAnnounceGeozone        = "AnnounceGeozone"
	ActivityDeleteGeozone          = "DeleteGeozone"
)

// ErrTypeValidation marks activity failures caused by bad input.
const ErrTypeValidation = "validation"

// GeozoneProvisioningWorkflow stores a drawn geozone, invalidates the cached
// geozone list and announces the geozone so every catalog refreshes. If a
// step after the store fails, the geozone is deleted again (saga
// compensation) so no half-published geozone survives.
func GeozoneProvisioningWorkflow(ctx workflow.Context, in domain.GeozoneInput) (domain.Geozone, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting geozone provisioning", "name", in.Name, "kind", in.Geometry.Kind)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeValidation},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Persist
	var gz domain.Geozone
	if err := workflow.ExecuteActivity(ctx, ActivityStoreGeozone, in).Get(ctx, &gz); err != nil {
		return domain.Geozone{}, err
	}

	// Step 2: Drop the cached list so readers see the new geozone
	if err := workflow.ExecuteActivity(ctx, ActivityInvalidateGeozoneCache).Get(ctx, nil); err != nil {
		logger.Warn("cache invalidation failed, compensating", "geozone_id", gz.ID, "error", err)
		compensate(ctx, gz.ID)
		return domain.Geozone{}, err
	}

	// Step 3: Announce to other processes
	if err := workflow.ExecuteActivity(ctx, ActivityAnnounceGeozone, gz).Get(ctx, nil); err != nil {
		logger.Warn("announce failed, compensating", "geozone_id", gz.ID, "error", err)
		compensate(ctx, gz.ID)
		return domain.Geozone{}, err
	}

	logger.Info("Geozone provisioned", "geozone_id", gz.ID)
	return gz, nil
}

func compensate(ctx workflow.Context, id string) {
	if err := workflow.ExecuteActivity(ctx, ActivityDeleteGeozone, id).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Error("compensation failed", "geozone_id", id, "error", err)
	}
}
