// Package refdata loads the read-only lookup lists that populate selection
// fields: insurance companies and customers.
//
// Lists load concurrently and fail independently. A failed list degrades to
// an empty selection with an inline message and never blocks the wizard.
package refdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"agency-intake/internal/apperr"
	"agency-intake/internal/metrics"
	"agency-intake/internal/model"
)

// List names a reference list.
type List string

const (
	Companies List = "companies"
	Customers List = "customers"
)

// Lists returns every list in load order.
func Lists() []List {
	return []List{Companies, Customers}
}

func (l List) noun() string {
	if l == Companies {
		return "insurance companies"
	}
	return string(l)
}

const defaultTimeout = 10 * time.Second

// Provider fetches reference lists from the backend.
type Provider interface {
	ListInsuranceCompanies(ctx context.Context, token string) ([]model.Company, error)
	ListCustomers(ctx context.Context, token string) ([]model.Customer, error)
}

// TokenSource yields the current auth token, or false when signed out.
type TokenSource interface {
	Token() (string, bool)
}

// Result is the outcome of loading one list. Message is the inline text shown
// next to the picker when Err is set.
type Result struct {
	List      List
	Companies []model.Company
	Customers []model.Customer
	Err       error
	Message   string
}

type Options struct {
	Cache   *Cache
	Timeout time.Duration
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Loader fetches every list concurrently.
type Loader struct {
	provider Provider
	cache    *Cache
	timeout  time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewLoader(p Provider, opts Options) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Loader{
		provider: p,
		cache:    opts.Cache,
		timeout:  opts.Timeout,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With("component", "refdata"),
	}
}

// Load fetches every list and calls deliver once per list as soon as that
// list is done. deliver may run concurrently from several goroutines. Load
// returns after every list has been delivered.
func (l *Loader) Load(ctx context.Context, tokens TokenSource, deliver func(Result)) {
	var g errgroup.Group
	for _, list := range Lists() {
		g.Go(func() error {
			deliver(l.fetch(ctx, list, tokens))
			return nil
		})
	}
	_ = g.Wait()
}

func (l *Loader) fetch(ctx context.Context, list List, tokens TokenSource) Result {
	token, ok := tokens.Token()
	if !ok {
		l.metrics.ReferenceLoad(string(list), metrics.LoadError)
		return Result{
			List:    list,
			Err:     apperr.WrapInvalid(apperr.ErrNoToken, "refdata", string(list), "no auth token"),
			Message: fmt.Sprintf("Please sign in again to load %s", list.noun()),
		}
	}

	if r, hit := l.cache.get(list, token); hit {
		l.metrics.ReferenceLoad(string(list), metrics.LoadCache)
		return r
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	r := Result{List: list}
	var err error
	switch list {
	case Companies:
		r.Companies, err = l.provider.ListInsuranceCompanies(ctx, token)
	case Customers:
		r.Customers, err = l.provider.ListCustomers(ctx, token)
	default:
		err = fmt.Errorf("unknown list %q", list)
	}
	if err != nil {
		l.metrics.ReferenceLoad(string(list), metrics.LoadError)
		l.logger.Warn("reference list load failed",
			"list", list, "class", apperr.ClassOf(err).String(), "error", err)
		if errors.Is(err, apperr.ErrNoToken) {
			return Result{List: list, Err: err, Message: fmt.Sprintf("Please sign in again to load %s", list.noun())}
		}
		return Result{List: list, Err: err, Message: fmt.Sprintf("Unable to load %s", list.noun())}
	}

	l.metrics.ReferenceLoad(string(list), metrics.LoadOK)
	l.cache.put(list, token, r)
	return r
}
