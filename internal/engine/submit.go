package engine

import (
	"context"
	"time"

	"agency-intake/internal/apperr"
	"agency-intake/internal/model"
	"agency-intake/internal/payload"
	"agency-intake/internal/validation"
)

const (
	inProgressMessage = "A submission is already in progress"
	closedMessage     = "This form has been closed"
	signInMessage     = "Please sign in again to submit"
	rejectedMessage   = "The server rejected the submission"
	buildMessage      = "Please review the form and try again"
	finalStepMessage  = "Please review every step before submitting"
)

// Submit validates the whole session, builds the payload and sends it.
//
// Validation failures return OutcomeInvalid without contacting the backend,
// as does a valid session that is not on its last step.
// A rejection returns OutcomeLogicalFailure with the server's message and a
// call that fails or times out returns OutcomeTransportFailure; both keep
// every field, record, attachment and the step position. Success resets the
// session to step 0 with defaults and then notifies the navigator. A Submit
// while another is in flight returns OutcomeIgnored.
func (s *Session) Submit(ctx context.Context) model.SubmissionResult {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return model.SubmissionResult{Outcome: model.OutcomeIgnored, Message: closedMessage}
	case s.submitting:
		s.mu.Unlock()
		s.metrics.Submission(string(s.kind), string(model.OutcomeIgnored), 0)
		return model.SubmissionResult{Outcome: model.OutcomeIgnored, Message: inProgressMessage}
	}

	if msg := validation.ValidateFinal(view{s}, s.schema.Rules); msg != nil {
		step := msg.Step
		if step == validation.StepFinal {
			step = s.steps.LastIndex()
		}
		s.mu.Unlock()
		s.logger.Debug("submission blocked by validation", "code", msg.Code, "field", msg.Field, "step", step)
		return s.finish(model.SubmissionResult{
			Outcome: model.OutcomeInvalid,
			Message: msg.Message,
			Step:    step,
			Code:    msg.Code,
		}, 0)
	}
	if !s.steps.IsLast() {
		step := s.steps.Index()
		s.mu.Unlock()
		return s.finish(model.SubmissionResult{
			Outcome: model.OutcomeInvalid,
			Message: finalStepMessage,
			Step:    step,
			Code:    model.CodeNotFinalStep,
		}, 0)
	}

	p, err := payload.Build(s.kind, view{s})
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("payload build failed after validation", "error", err)
		return s.finish(model.SubmissionResult{Outcome: model.OutcomeInvalid, Message: buildMessage}, 0)
	}
	s.submitting = true
	s.mu.Unlock()

	token, ok := s.tokens.Token()
	if !ok {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
		s.logger.Warn("submission without auth token", "error", apperr.ErrNoToken)
		return s.finish(model.SubmissionResult{Outcome: model.OutcomeLogicalFailure, Message: signInMessage}, 0)
	}

	ctx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	start := time.Now()
	resp, err := s.submitter.Submit(ctx, token, s.kind, p)
	took := time.Since(start)
	cancel()

	s.mu.Lock()
	s.submitting = false
	if s.closed {
		s.mu.Unlock()
		s.logger.Info("submission outcome discarded after close", "took", took)
		return model.SubmissionResult{Outcome: model.OutcomeIgnored, Message: closedMessage}
	}

	var res model.SubmissionResult
	switch {
	case err != nil:
		s.logger.Warn("submission failed",
			"class", apperr.ClassOf(err).String(), "took", took, "error", err)
		res = model.SubmissionResult{Outcome: model.OutcomeTransportFailure, Message: TransportMessage}
	case !resp.Status:
		msg := resp.Message
		if msg == "" {
			msg = rejectedMessage
		}
		res = model.SubmissionResult{Outcome: model.OutcomeLogicalFailure, Message: msg}
	default:
		res = success(s.kind, resp)
		s.resetLocked()
	}
	nav := s.nav
	s.mu.Unlock()

	res = s.finish(res, took)
	if res.Succeeded() {
		nav.Submitted(res)
	}
	return res
}

func success(kind model.Kind, resp model.SubmitResponse) model.SubmissionResult {
	res := model.SubmissionResult{Outcome: model.OutcomeOK, Message: resp.Message}
	if res.Message == "" {
		res.Message = kind.Label() + " created successfully"
	}
	if resp.Data != nil {
		res.PolicyNumber = resp.Data.PolicyNumber
		res.RecordID = resp.Data.ID
	}
	return res
}

func (s *Session) finish(res model.SubmissionResult, took time.Duration) model.SubmissionResult {
	s.metrics.Submission(string(s.kind), string(res.Outcome), took)
	s.logger.Info("submission finished", "outcome", res.Outcome, "took", took)
	return res
}
