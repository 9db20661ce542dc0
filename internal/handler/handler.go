// Package handler serves intake sessions over HTTP. Each session is an
// engine.Session addressed by its id; the caller's bearer token is handed to
// the session for its backend calls.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"agency-intake/internal/apperr"
	"agency-intake/internal/engine"
	"agency-intake/internal/metrics"
	"agency-intake/internal/model"
	"agency-intake/internal/refdata"
	"agency-intake/internal/schema"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Submitter        engine.Submitter
	References       engine.ReferenceProvider
	ReferenceCache   *refdata.Cache
	SubmitTimeout    time.Duration
	ReferenceTimeout time.Duration
	// SessionIdleTTL closes sessions untouched for this long. Defaults to 30m.
	SessionIdleTTL time.Duration
	// MaxSessions caps open sessions; the least recently used is closed first.
	// Zero means no cap.
	MaxSessions int
	Metrics     *metrics.Metrics
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

type entry struct {
	session *engine.Session
	tokens  *bearer
}

const defaultSessionIdleTTL = 30 * time.Minute

// Service routes requests to sessions.
type Service struct {
	deps     Deps
	logger   *slog.Logger
	metrics  fasthttp.RequestHandler
	sessions *expirable.LRU[string, *entry]
}

func New(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.SessionIdleTTL <= 0 {
		deps.SessionIdleTTL = defaultSessionIdleTTL
	}
	if deps.MaxSessions < 0 {
		deps.MaxSessions = 0
	}
	s := &Service{
		deps:   deps,
		logger: deps.Logger.With("component", "handler"),
	}
	// Every removal closes the session.
	s.sessions = expirable.NewLRU[string, *entry](deps.MaxSessions, func(id string, e *entry) {
		e.session.Close()
		s.logger.Debug("session closed", "session", id)
	}, deps.SessionIdleTTL)
	if deps.Gatherer != nil {
		s.metrics = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	return s
}

// Handle is the fasthttp entry point.
func (s *Service) Handle(ctx *fasthttp.RequestCtx) {
	parts := strings.Split(strings.Trim(string(ctx.Path()), "/"), "/")
	method := string(ctx.Method())

	switch {
	case parts[0] == "healthz" && len(parts) == 1:
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
	case parts[0] == "metrics" && len(parts) == 1 && s.metrics != nil:
		s.metrics(ctx)
	case parts[0] == "schemas" && len(parts) == 2 && method == fasthttp.MethodGet:
		s.getSchema(ctx, parts[1])
	case parts[0] == "sessions" && len(parts) == 1 && method == fasthttp.MethodPost:
		s.createSession(ctx)
	case parts[0] == "sessions" && len(parts) >= 2:
		e, err := s.lookup(parts[1])
		if err != nil {
			writeError(ctx, err)
			return
		}
		e.tokens.set(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
		s.route(ctx, method, parts[1], parts[2:], e)
	default:
		writeStatus(ctx, fasthttp.StatusNotFound, "Not found")
	}
}

func (s *Service) route(ctx *fasthttp.RequestCtx, method, id string, rest []string, e *entry) {
	sess := e.session
	action := ""
	if len(rest) > 0 {
		action = rest[0]
	}

	switch {
	case action == "" && method == fasthttp.MethodGet:
		writeJSON(ctx, fasthttp.StatusOK, sess.View())
	case action == "" && method == fasthttp.MethodDelete:
		s.closeSession(id)
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	case action == "fields" && method == fasthttp.MethodPut:
		s.setFields(ctx, sess)
	case action == "records" && len(rest) == 2 && method == fasthttp.MethodPost:
		localID, err := sess.AddSubRecord(rest[1])
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeJSON(ctx, fasthttp.StatusCreated, map[string]string{"local_id": localID})
	case action == "records" && len(rest) == 3 && method == fasthttp.MethodPatch:
		s.updateRecord(ctx, sess, rest[1], rest[2])
	case action == "records" && len(rest) == 3 && method == fasthttp.MethodDelete:
		if err := sess.RemoveSubRecord(rest[1], rest[2]); err != nil {
			writeError(ctx, err)
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, sess.View())
	case action == "attachments" && method == fasthttp.MethodPost:
		s.addAttachments(ctx, sess)
	case action == "attachments" && method == fasthttp.MethodDelete:
		removed := sess.RemoveAttachment(string(ctx.QueryArgs().Peek("uri")))
		writeJSON(ctx, fasthttp.StatusOK, map[string]bool{"removed": removed})
	case action == "advance" && method == fasthttp.MethodPost:
		msg, moved := sess.Advance()
		writeJSON(ctx, fasthttp.StatusOK, moveResponse{Moved: moved, Message: msg, Step: sess.CurrentStep()})
	case action == "retreat" && method == fasthttp.MethodPost:
		exit := sess.Retreat()
		writeJSON(ctx, fasthttp.StatusOK, moveResponse{Moved: !exit, Exit: exit, Step: sess.CurrentStep()})
	case action == "jump" && method == fasthttp.MethodPost:
		s.jump(ctx, sess)
	case action == "submit" && method == fasthttp.MethodPost:
		res := sess.Submit(context.Background())
		writeJSON(ctx, submitStatus(res.Outcome), res)
	case action == "reset" && method == fasthttp.MethodPost:
		sess.Reset()
		writeJSON(ctx, fasthttp.StatusOK, sess.View())
	case action == "reference" && method == fasthttp.MethodPost:
		sess.LoadReferenceData(context.Background())
		writeJSON(ctx, fasthttp.StatusOK, sess.ReferenceData())
	case action == "changes" && method == fasthttp.MethodGet:
		ops, err := sess.Changes()
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, map[string]any{"dirty": len(ops) > 0, "changes": ops})
	default:
		writeStatus(ctx, fasthttp.StatusNotFound, "Not found")
	}
}

type createRequest struct {
	Kind string `json:"kind"`
}

func (s *Service) createSession(ctx *fasthttp.RequestCtx) {
	var req createRequest
	if !decode(ctx, &req) {
		return
	}
	kind, ok := model.ParseKind(req.Kind)
	if !ok {
		writeError(ctx, apperr.WrapInvalid(apperr.ErrUnknownKind, "handler", "createSession", req.Kind))
		return
	}

	tokens := &bearer{}
	tokens.set(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
	sess, err := engine.New(kind, engine.Options{
		Submitter:        s.deps.Submitter,
		Tokens:           tokens,
		References:       s.deps.References,
		Navigator:        logNavigator{logger: s.logger},
		ReferenceCache:   s.deps.ReferenceCache,
		ReferenceTimeout: s.deps.ReferenceTimeout,
		SubmitTimeout:    s.deps.SubmitTimeout,
		Metrics:          s.deps.Metrics,
		Logger:           s.deps.Logger,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	s.sessions.Add(sess.ID(), &entry{session: sess, tokens: tokens})

	s.logger.Info("session created", "session", sess.ID(), "kind", kind)
	writeJSON(ctx, fasthttp.StatusCreated, sess.View())
}

// lookup returns the session and restarts its idle timer.
func (s *Service) lookup(id string) (*entry, error) {
	e, ok := s.sessions.Get(id)
	if ok {
		s.sessions.Add(id, e)
		if e.session.Closed() {
			// Expired between Get and Add.
			s.sessions.Remove(id)
			ok = false
		}
	}
	if !ok {
		return nil, apperr.WrapInvalid(apperr.ErrSessionNotFound, "handler", "lookup", id)
	}
	return e, nil
}

func (s *Service) closeSession(id string) {
	s.sessions.Remove(id)
}

// Close closes every open session.
func (s *Service) Close() {
	s.sessions.Purge()
}

// Len reports the number of open sessions.
func (s *Service) Len() int {
	return s.sessions.Len()
}

type fieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

func (s *Service) setFields(ctx *fasthttp.RequestCtx, sess *engine.Session) {
	var req fieldsRequest
	if !decode(ctx, &req) {
		return
	}
	// Unknown names are rejected before anything is written.
	for name := range req.Fields {
		if _, ok := sess.Schema().Field(name); !ok {
			writeError(ctx, apperr.WrapInvalid(apperr.ErrUnknownField, "handler", "setFields", name))
			return
		}
	}
	// Schema order puts derivation inputs before their targets.
	for _, f := range sess.Schema().Fields {
		value, ok := req.Fields[f.Name]
		if !ok {
			continue
		}
		if err := sess.SetField(f.Name, value); err != nil {
			writeError(ctx, err)
			return
		}
	}
	writeJSON(ctx, fasthttp.StatusOK, sess.View())
}

type recordRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (s *Service) updateRecord(ctx *fasthttp.RequestCtx, sess *engine.Session, collection, localID string) {
	var req recordRequest
	if !decode(ctx, &req) {
		return
	}
	if err := sess.UpdateSubRecord(collection, localID, req.Field, req.Value); err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, sess.View())
}

type attachmentsRequest struct {
	Files []model.Attachment `json:"files"`
}

func (s *Service) addAttachments(ctx *fasthttp.RequestCtx, sess *engine.Session) {
	var req attachmentsRequest
	if !decode(ctx, &req) {
		return
	}
	added := sess.AddAttachments(req.Files)
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{"added": added, "attachments": sess.Attachments()})
}

type jumpRequest struct {
	Index int `json:"index"`
}

func (s *Service) jump(ctx *fasthttp.RequestCtx, sess *engine.Session) {
	var req jumpRequest
	if !decode(ctx, &req) {
		return
	}
	sess.JumpTo(req.Index)
	writeJSON(ctx, fasthttp.StatusOK, moveResponse{Moved: true, Step: sess.CurrentStep()})
}

func (s *Service) getSchema(ctx *fasthttp.RequestCtx, name string) {
	kind, ok := model.ParseKind(name)
	if !ok {
		writeError(ctx, apperr.WrapInvalid(apperr.ErrUnknownKind, "handler", "getSchema", name))
		return
	}
	sch, _ := schema.Get(kind)
	writeJSON(ctx, fasthttp.StatusOK, sch)
}

type moveResponse struct {
	Moved   bool                     `json:"moved"`
	Exit    bool                     `json:"exit,omitempty"`
	Message *model.ValidationMessage `json:"message,omitempty"`
	Step    engine.StepInfo          `json:"step"`
}

func submitStatus(o model.Outcome) int {
	switch o {
	case model.OutcomeOK:
		return fasthttp.StatusCreated
	case model.OutcomeInvalid:
		return fasthttp.StatusUnprocessableEntity
	case model.OutcomeLogicalFailure:
		return fasthttp.StatusConflict
	case model.OutcomeTransportFailure:
		return fasthttp.StatusBadGateway
	case model.OutcomeIgnored:
		return fasthttp.StatusAccepted
	}
	return fasthttp.StatusOK
}

func decode(ctx *fasthttp.RequestCtx, v any) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeStatus(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeStatus(ctx, fasthttp.StatusInternalServerError, "Unable to encode response")
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, err error) {
	status := fasthttp.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrSessionNotFound), errors.Is(err, apperr.ErrUnknownRecord):
		status = fasthttp.StatusNotFound
	case errors.Is(err, apperr.ErrSessionClosed):
		status = fasthttp.StatusGone
	case apperr.IsInvalid(err), errors.Is(err, apperr.ErrUnknownField):
		status = fasthttp.StatusBadRequest
	}
	writeStatus(ctx, status, err.Error())
}

func writeStatus(ctx *fasthttp.RequestCtx, status int, message string) {
	body, _ := json.Marshal(model.ErrorResponse{Status: status, Message: message})
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

// bearer holds the token from the latest request of a session's client.
type bearer struct {
	mu    sync.Mutex
	token string
}

func (b *bearer) set(header []byte) {
	h := strings.TrimSpace(string(header))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		h = strings.TrimSpace(h[7:])
	}
	b.mu.Lock()
	b.token = h
	b.mu.Unlock()
}

func (b *bearer) Token() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token, b.token != ""
}

type logNavigator struct {
	logger *slog.Logger
}

func (n logNavigator) Exit() {
	n.logger.Debug("wizard exit requested")
}

func (n logNavigator) Submitted(res model.SubmissionResult) {
	n.logger.Info("record created",
		"policy_number", res.PolicyNumber, "record_id", res.RecordID, "message", res.Message)
}
