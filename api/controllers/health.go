package controllers

import (
	"context"
	"net/http"

	"github.com/minhngocdo/herbamart-storefront/api/responses"
	pkgerrors "github.com/minhngocdo/herbamart-storefront/pkg/errors"
	"github.com/minhngocdo/herbamart-storefront/pkg/logger"
	"go.uber.org/multierr"
)

// Dependency is a named readiness check.
type Dependency struct {
	Name string
	Ping func(context.Context) error
}

type HealthController struct {
	deps []Dependency
	logg *logger.Logger
}

func NewHealthController(logg *logger.Logger, deps ...Dependency) *HealthController {
	return &HealthController{deps: deps, logg: logg}
}

// Live reports process liveness only.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, map[string]any{"status": "ok"})
}

// Ready checks every dependency and reports the aggregate. A single failing
// dependency fails the probe, but all of them are still checked so the log
// shows the full picture.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	statuses := map[string]string{}
	var combined error
	for _, dep := range c.deps {
		if err := dep.Ping(ctx); err != nil {
			statuses[dep.Name] = "down"
			combined = multierr.Append(combined, err)
			continue
		}
		statuses[dep.Name] = "ok"
	}

	if combined != nil {
		err := pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "dependencies unavailable").
			WithDetails(statuses)
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, map[string]any{"status": "ok", "dependencies": statuses})
}
