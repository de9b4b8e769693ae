package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Status calls the service health endpoint and prints the result.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	health, err := r.client.Health(ctx)
	if cmd.Bool("json") && health != nil {
		if werr := r.writeJSON(health, true); werr != nil {
			return werr
		}
		return err
	}
	if err != nil && health == nil {
		return err
	}

	r.writePlainHeader("Storyboard Service")
	r.writePlain("Service:   %s\n", health.Service)
	r.writePlain("Status:    %s\n", health.Status)
	r.writePlain("Timestamp: %s\n", health.Timestamp)
	r.writePlain("Endpoint:  %s\n", r.client.Name())
	return err
}
