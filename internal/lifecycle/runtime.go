package lifecycle

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Component is a long-lived part of the bot with explicit startup and
// shutdown, owned by a Runtime.
type Component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runtime starts components in registration order and stops them in
// reverse. Only components that started successfully are stopped.
type Runtime struct {
	components []Component
	started    []Component
}

func NewRuntime(components ...Component) *Runtime {
	return &Runtime{components: components}
}

func (r *Runtime) Register(component Component) {
	if component == nil {
		return
	}
	r.components = append(r.components, component)
}

func (r *Runtime) Start(ctx context.Context) error {
	for _, component := range r.components {
		if component == nil {
			continue
		}
		if err := component.Start(ctx); err != nil {
			if stopErr := r.Stop(ctx); stopErr != nil {
				log.WithField("error", stopErr.Error()).Error("cant roll back started components")
			}
			return fmt.Errorf("start component: %w", err)
		}
		r.started = append(r.started, component)
	}
	return nil
}

func (r *Runtime) Stop(ctx context.Context) error {
	var stopErr error
	for i := len(r.started) - 1; i >= 0; i-- {
		if err := r.started[i].Stop(ctx); err != nil {
			stopErr = errors.Join(stopErr, fmt.Errorf("stop component: %w", err))
		}
	}
	r.started = nil
	return stopErr
}
