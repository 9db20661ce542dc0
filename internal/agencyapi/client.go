// Package agencyapi is the REST client for the agency backend. It submits
// intake payloads and fetches reference lists.
package agencyapi

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"agency-intake/internal/apperr"
	"agency-intake/internal/model"
)

const component = "agencyapi"

var submitPaths = map[model.Kind]string{
	model.KindHealthPolicy: "/policies/health",
	model.KindLifePolicy:   "/policies/life",
	model.KindMotorPolicy:  "/policies/motor",
	model.KindOtherPolicy:  "/policies/other",
	model.KindCustomer:     "/customers",
	model.KindLead:         "/leads",
}

const (
	companiesPath = "/insurance-companies"
	customersPath = "/customers"
)

// SubmitPath returns the endpoint that creates records of kind.
func SubmitPath(kind model.Kind) (string, bool) {
	p, ok := submitPaths[kind]
	return p, ok
}

type Options struct {
	BaseURL string
	// HTTPClient overrides the default fasthttp client, e.g. to dial an
	// in-memory listener.
	HTTPClient *fasthttp.Client
	Logger     *slog.Logger
}

// Client talks to the agency backend. It is safe for concurrent use.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	logger  *slog.Logger
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, apperr.WrapInvalid(apperr.ErrInvalidConfig, component, "New", "base URL is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &fasthttp.Client{
			Name:                "agency-intake",
			MaxConnsPerHost:     100,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         30 * time.Second,
			WriteTimeout:        30 * time.Second,
		}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		http:    opts.HTTPClient,
		baseURL: base,
		logger:  opts.Logger.With("component", component),
	}, nil
}

// Submit posts payload to the endpoint for kind. Any body carrying a status
// field is returned as is, including status false with no message; an error
// means the backend could not be reached or answered with something other
// than a submit response.
func (c *Client) Submit(ctx context.Context, token string, kind model.Kind, payload model.Payload) (model.SubmitResponse, error) {
	path, ok := submitPaths[kind]
	if !ok {
		return model.SubmitResponse{}, apperr.WrapInvalid(apperr.ErrUnknownKind, component, "Submit", string(kind))
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return model.SubmitResponse{}, apperr.WrapFatal(err, component, "Submit", "encode payload")
	}

	status, raw, err := c.do(ctx, fasthttp.MethodPost, path, token, body)
	if err != nil {
		return model.SubmitResponse{}, err
	}

	var shape struct {
		Status *bool `json:"status"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil || shape.Status == nil {
		return model.SubmitResponse{}, unexpected(status, "Submit", err)
	}
	var resp model.SubmitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return model.SubmitResponse{}, unexpected(status, "Submit", err)
	}
	c.logger.Debug("submit answered", "kind", kind, "http_status", status, "status", resp.Status)
	return resp, nil
}

func (c *Client) ListInsuranceCompanies(ctx context.Context, token string) ([]model.Company, error) {
	var out []model.Company
	if err := c.list(ctx, companiesPath, token, "ListInsuranceCompanies", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCustomers(ctx context.Context, token string) ([]model.Customer, error) {
	var out []model.Customer
	if err := c.list(ctx, customersPath, token, "ListCustomers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

type listEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// list accepts a bare JSON array or a {status, message, data} envelope.
func (c *Client) list(ctx context.Context, path, token, op string, out any) error {
	status, raw, err := c.do(ctx, fasthttp.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	if status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden {
		return apperr.WrapInvalid(apperr.ErrNoToken, component, op, "token rejected")
	}
	if status < 200 || status > 299 {
		return unexpected(status, op, nil)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperr.WrapFatal(err, component, op, "decode list")
		}
		return nil
	}
	var env listEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apperr.WrapFatal(err, component, op, "decode envelope")
	}
	if !env.Status {
		return apperr.WrapFatal(fmt.Errorf("%w: %s", apperr.ErrUnexpectedStatus, env.Message), component, op, "list refused")
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperr.WrapFatal(err, component, op, "decode list")
	}
	return nil
}

// do performs one request bounded by ctx's deadline and returns the status
// code and a copy of the body.
func (c *Client) do(ctx context.Context, method, path, token string, body []byte) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, apperr.WrapTransient(err, component, method+" "+path, "context done")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(body)
	}

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.Do(req, resp)
	}
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "took", time.Since(start), "error", err)
		return 0, nil, apperr.WrapTransient(err, component, method+" "+path, "request failed")
	}
	return resp.StatusCode(), append([]byte(nil), resp.Body()...), nil
}

func unexpected(status int, op string, cause error) error {
	err := fmt.Errorf("%w: %d", apperr.ErrUnexpectedStatus, status)
	if cause != nil {
		err = fmt.Errorf("%w: %v", err, cause)
	}
	if status >= 500 {
		return apperr.WrapTransient(err, component, op, "backend error")
	}
	return apperr.WrapFatal(err, component, op, "unexpected response")
}
