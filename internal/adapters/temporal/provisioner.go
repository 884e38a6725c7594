// Package temporal starts geozone provisioning workflows.
package temporal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/KRVIMAL/routeye-sub001/internal/core/domain"
	"github.com/KRVIMAL/routeye-sub001/internal/pkg/logging"
	"github.com/KRVIMAL/routeye-sub001/internal/workflows"
)

// Provisioner implements ports.GeozoneProvisioner by running
// GeozoneProvisioningWorkflow and waiting for its result.
type Provisioner struct {
	client    client.Client
	taskQueue string
	logger    *slog.Logger
}

func NewProvisioner(c client.Client, taskQueue string, logger *slog.Logger) *Provisioner {
	return &Provisioner{client: c, taskQueue: taskQueue, logger: logging.Component(logger, "temporal_provisioner")}
}

func (p *Provisioner) Provision(ctx context.Context, in domain.GeozoneInput) (*domain.Geozone, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	opts := client.StartWorkflowOptions{
		ID:        "geozone-provision-" + uuid.NewString(),
		TaskQueue: p.taskQueue,
	}
	run, err := p.client.ExecuteWorkflow(ctx, opts, workflows.GeozoneProvisioningWorkflow, in)
	if err != nil {
		return nil, fmt.Errorf("start provisioning workflow: %w", err)
	}
	p.logger.Debug("provisioning workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	var gz domain.Geozone
	if err := run.Get(ctx, &gz); err != nil {
		var appErr *temporal.ApplicationError
		if errors.As(err, &appErr) && appErr.Type() == workflows.ErrTypeValidation {
			return nil, fmt.Errorf("%w: %s", domain.ErrValidation, appErr.Message())
		}
		return nil, fmt.Errorf("provisioning workflow %s: %w", run.GetID(), err)
	}
	return &gz, nil
}
