// Package engine runs intake sessions: one wizard instance per session, with
// its fields, sub-record collections, attachments, step position, reference
// lists and the submit state machine.
//
// A Session serializes every call with a mutex. The lock is never held across
// a backend call, so reference loads and a submit in flight do not block
// edits.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"agency-intake/internal/apperr"
	"agency-intake/internal/metrics"
	"agency-intake/internal/model"
	"agency-intake/internal/refdata"
)

const defaultSubmitTimeout = 30 * time.Second

// TransportMessage is shown for every submission that did not reach the
// backend or timed out.
const TransportMessage = "Unable to reach the server. Please check your connection and try again."

// ErrPickCancelled is returned by a Picker when the user dismisses it.
var ErrPickCancelled = errors.New("file pick cancelled")

// ReferenceProvider fetches the lookup lists behind selection fields.
type ReferenceProvider interface {
	ListInsuranceCompanies(ctx context.Context, token string) ([]model.Company, error)
	ListCustomers(ctx context.Context, token string) ([]model.Customer, error)
}

// Submitter creates the record on the backend. A response with Status false
// is a rejection of well-formed input; an error means the call itself failed.
type Submitter interface {
	Submit(ctx context.Context, token string, kind model.Kind, payload model.Payload) (model.SubmitResponse, error)
}

// Picker asks the user for files.
type Picker interface {
	PickFiles(ctx context.Context) ([]model.Attachment, error)
}

// TokenSource yields the current auth token, or false when there is none. It
// is consulted once per backend call and the token is never kept.
type TokenSource interface {
	Token() (string, bool)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() (string, bool)

func (f TokenFunc) Token() (string, bool) { return f() }

// Navigator receives the navigation requests a session cannot handle itself.
type Navigator interface {
	// Exit is called when the user steps back from the first step.
	Exit()
	// Submitted is called after a successful submission has reset the
	// session.
	Submitted(result model.SubmissionResult)
}

type nopNavigator struct{}

func (nopNavigator) Exit()                            {}
func (nopNavigator) Submitted(model.SubmissionResult) {}

type Options struct {
	Submitter  Submitter
	Tokens     TokenSource
	References ReferenceProvider
	Picker     Picker
	Navigator  Navigator

	// ReferenceCache is shared across sessions; nil disables caching.
	ReferenceCache   *refdata.Cache
	ReferenceTimeout time.Duration
	SubmitTimeout    time.Duration

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func (o *Options) validate() error {
	if o.Submitter == nil {
		return apperr.WrapInvalid(apperr.ErrInvalidConfig, "engine", "New", "submitter is required")
	}
	if o.Tokens == nil {
		return apperr.WrapInvalid(apperr.ErrInvalidConfig, "engine", "New", "token source is required")
	}
	if o.Navigator == nil {
		o.Navigator = nopNavigator{}
	}
	if o.SubmitTimeout <= 0 {
		o.SubmitTimeout = defaultSubmitTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return nil
}
