package dashboard

import (
	"context"
	"fmt"

	"proedualt/internal/errors"
	"proedualt/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Analyze runs a scoring pass for the signed-in user. Prior results and
// plan are cleared first. Business errors and connectivity failures end
// in PhaseAnalysisError with the message to show; a payload that is
// neither a list nor an error ends in PhaseResults with nothing to render.
func (c *Controller) Analyze(ctx context.Context) error {
	if err := c.acquire(flightAnalyze); err != nil {
		return err
	}
	defer c.release(flightAnalyze)

	c.mu.Lock()
	userID, err := c.userIDLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.state.Profile.HasHandle() {
		c.mu.Unlock()
		return errors.NewValidationError(errors.ErrCodeMissingHandle, MsgHandleFirst, nil)
	}
	c.state.Recommendations = nil
	c.state.AnalysisError = ""
	c.state.Career = ""
	c.state.Plan = nil
	c.state.PlanError = ""
	c.state.Phase = PhaseAnalyzing
	token := c.beginLocked(seqAnalyze)
	c.beginLocked(seqPlan)
	c.mu.Unlock()

	res, callErr := c.backend.Analyze(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(seqAnalyze, token) {
		return errors.ErrStaleResponse
	}

	switch {
	case callErr != nil:
		c.state.Phase = PhaseAnalysisError
		c.state.AnalysisError = errors.UserMessage(callErr)
		c.logger.LogError(callErr, "Analysis failed", "user_id", userID)
	case res.IsErr():
		c.state.Phase = PhaseAnalysisError
		c.state.AnalysisError = res.Message
	case res.IsOK():
		c.state.Phase = PhaseResults
		c.state.Recommendations = res.Value
	default:
		c.state.Phase = PhaseResults
		c.logger.Warn("Analysis returned nothing renderable", "user_id", userID)
	}

	c.recordMetric(ctx, observability.MetricAnalysis, c.state.Phase == PhaseResults,
		attribute.Int("recommendations", len(c.state.Recommendations)))
	return callErr
}

// GeneratePlan builds a learning plan for one recommendation of the last
// analysis. The recommendations stay in place whatever the outcome.
func (c *Controller) GeneratePlan(ctx context.Context, career string) error {
	if err := c.acquire(flightPlan); err != nil {
		return err
	}
	defer c.release(flightPlan)

	c.mu.Lock()
	if _, err := c.userIDLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	rec, ok := c.state.Recommendation(career)
	if !ok {
		c.mu.Unlock()
		return errors.NewValidationError(errors.ErrCodeUnknownCareer,
			fmt.Sprintf("No recommendation for %q. Run an analysis first.", career), nil).
			WithContext("career", career)
	}
	rec = rec.Clone()
	c.state.Plan = nil
	c.state.PlanError = ""
	c.state.Career = career
	c.state.Phase = PhasePlanGenerating
	token := c.beginLocked(seqPlan)
	c.mu.Unlock()

	res, callErr := c.backend.GeneratePlan(ctx, rec)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(seqPlan, token) {
		return errors.ErrStaleResponse
	}

	switch {
	case callErr != nil:
		c.state.Phase = PhasePlanError
		c.state.PlanError = errors.UserMessage(callErr)
		c.logger.LogError(callErr, "Plan generation failed", "career", career)
	case res.IsErr():
		c.state.Phase = PhasePlanError
		c.state.PlanError = res.Message
	case res.IsOK():
		c.state.Phase = PhasePlanReady
		c.state.Plan = res.Value
		for _, item := range res.Value {
			c.known[item.ID] = struct{}{}
		}
	default:
		c.state.Phase = PhasePlanReady
	}

	c.recordMetric(ctx, observability.MetricPlan, c.state.Phase == PhasePlanReady,
		attribute.String("career", career), attribute.Int("items", len(c.state.Plan)))
	return callErr
}
