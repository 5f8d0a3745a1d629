package dashboard

import (
	"context"
	"fmt"
	"slices"

	"proedualt/internal/errors"
	"proedualt/internal/observability"
	"proedualt/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// pendingToggle is an optimistic change waiting for the backend
type pendingToggle struct {
	userID      string
	id          types.ResourceID
	complete    bool
	wasComplete bool
	generation  uint64
}

// Toggle marks id complete or incomplete. The completion set changes
// before the backend is called. A failed call restores the previous
// membership unless a newer toggle of the same id happened meanwhile,
// and emits a notice. The profile is re-read once the call settles.
func (c *Controller) Toggle(ctx context.Context, id types.ResourceID, complete bool) error {
	p, err := c.applyToggle(id, complete, false)
	if err != nil {
		return err
	}
	return c.settleToggle(ctx, p)
}

// ToggleAsync applies the optimistic change and settles it in the
// background. Only validation failures are returned.
func (c *Controller) ToggleAsync(id types.ResourceID, complete bool) error {
	p, err := c.applyToggle(id, complete, true)
	if err != nil {
		return err
	}
	go func() {
		defer c.wg.Done()
		_ = c.settleToggle(c.ctx, p)
	}()
	return nil
}

func (c *Controller) applyToggle(id types.ResourceID, complete, background bool) (pendingToggle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	userID, err := c.userIDLocked()
	if err != nil {
		return pendingToggle{}, err
	}
	if id == "" {
		return pendingToggle{}, errors.NewValidationError(errors.ErrCodeInvalidRequest, "resource id is required", nil)
	}
	was := slices.Contains(c.state.Completed, id)
	if _, ok := c.known[id]; !ok && !was {
		return pendingToggle{}, errors.NewValidationError(errors.ErrCodeUnknownResource,
			fmt.Sprintf("Unknown learning resource %q.", id), nil).WithContext("resource_id", string(id))
	}

	c.state.Completed = setMembership(c.state.Completed, id, complete)
	c.generations[id]++
	if background {
		c.wg.Add(1)
	}
	return pendingToggle{
		userID:      userID,
		id:          id,
		complete:    complete,
		wasComplete: was,
		generation:  c.generations[id],
	}, nil
}

func (c *Controller) settleToggle(ctx context.Context, p pendingToggle) error {
	res, err := c.backend.SetProgress(ctx, types.ProgressUpdate{
		UserID:     p.userID,
		ResourceID: p.id,
		IsComplete: p.complete,
	})
	if err == nil {
		_, err = res.Unwrap()
	}

	c.recordMetric(ctx, observability.MetricToggle, err == nil,
		attribute.String("resource_id", string(p.id)), attribute.Bool("complete", p.complete))

	if err != nil {
		c.rollback(ctx, p, err)
	}
	c.reloadProfile(ctx)
	return err
}

func (c *Controller) rollback(ctx context.Context, p pendingToggle, cause error) {
	c.mu.Lock()
	applies := !c.closed &&
		c.state.Session.UserID() == p.userID &&
		c.generations[p.id] == p.generation
	if applies {
		c.state.Completed = setMembership(c.state.Completed, p.id, p.wasComplete)
	}
	c.mu.Unlock()

	if !applies {
		c.logger.Debug("Toggle failed after a newer change, keeping state", "resource_id", string(p.id))
		return
	}

	c.logger.LogError(cause, "Progress update failed, rolled back", "resource_id", string(p.id))
	c.recordMetric(ctx, observability.MetricRollback, true, attribute.String("resource_id", string(p.id)))
	c.emit(Notice{
		Level:   NoticeError,
		Message: fmt.Sprintf("Could not save progress for %s: %s", p.id, errors.UserMessage(cause)),
	})
}

func setMembership(ids []types.ResourceID, id types.ResourceID, member bool) []types.ResourceID {
	if member {
		return addID(ids, id)
	}
	return removeID(ids, id)
}

// addID appends id unless present
func addID(ids []types.ResourceID, id types.ResourceID) []types.ResourceID {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func removeID(ids []types.ResourceID, id types.ResourceID) []types.ResourceID {
	return slices.DeleteFunc(slices.Clone(ids), func(v types.ResourceID) bool { return v == id })
}
