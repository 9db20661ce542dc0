package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"agency-intake/internal/apperr"
	"agency-intake/internal/attachment"
	"agency-intake/internal/collection"
	"agency-intake/internal/fields"
	"agency-intake/internal/metrics"
	"agency-intake/internal/model"
	"agency-intake/internal/refdata"
	"agency-intake/internal/schema"
	"agency-intake/internal/steps"
	"agency-intake/internal/validation"
)

// Session is one running intake wizard.
type Session struct {
	id     string
	kind   model.Kind
	schema *schema.Schema

	submitter     Submitter
	tokens        TokenSource
	picker        Picker
	nav           Navigator
	loader        *refdata.Loader
	submitTimeout time.Duration
	metrics       *metrics.Metrics
	logger        *slog.Logger

	mu          sync.Mutex
	fields      *fields.Store
	collections map[string]*collection.Field
	attachments *attachment.Set
	steps       *steps.Sequence
	refs        refdata.State
	dirty       bool
	submitting  bool
	closed      bool
}

// StepInfo describes the current wizard position.
type StepInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Total int    `json:"total"`
	Last  bool   `json:"last"`
}

// New starts a session for kind at step 0 with every field at its default.
func New(kind model.Kind, opts Options) (*Session, error) {
	sch, err := schema.Lookup(kind)
	if err != nil {
		return nil, apperr.WrapInvalid(err, "engine", "New", "unsupported kind")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:            uuid.NewString(),
		kind:          kind,
		schema:        sch,
		submitter:     opts.Submitter,
		tokens:        opts.Tokens,
		picker:        opts.Picker,
		nav:           opts.Navigator,
		submitTimeout: opts.SubmitTimeout,
		metrics:       opts.Metrics,
		fields:        fields.New(sch.Defaults()),
		collections:   make(map[string]*collection.Field, len(sch.Collections)),
		attachments:   attachment.New(),
	}
	s.logger = opts.Logger.With("component", "engine", "session", s.id, "kind", kind)
	if opts.References != nil {
		s.loader = refdata.NewLoader(opts.References, refdata.Options{
			Cache:   opts.ReferenceCache,
			Timeout: opts.ReferenceTimeout,
			Metrics: opts.Metrics,
			Logger:  opts.Logger,
		})
	}
	for _, name := range sch.CollectionNames() {
		s.collections[name] = collection.New(name)
	}
	s.steps = steps.New(sch.StepList(), func(i int) *model.ValidationMessage {
		return validation.ValidateStep(view{s}, sch.Rules, i)
	})
	s.refs = refdata.State{
		Companies: refdata.ListState[model.Company]{Items: []model.Company{}},
		Customers: refdata.ListState[model.Customer]{Items: []model.Customer{}},
	}

	s.metrics.SessionOpened()
	s.logger.Debug("session started")
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Kind() model.Kind { return s.kind }

// Schema returns the definition the session runs. It must not be mutated.
func (s *Session) Schema() *schema.Schema { return s.schema }

func (s *Session) CurrentStep() StepInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepInfo()
}

func (s *Session) stepInfo() StepInfo {
	return StepInfo{
		Index: s.steps.Index(),
		Name:  s.steps.Current().Name,
		Total: s.steps.Len(),
		Last:  s.steps.IsLast(),
	}
}

// Advance moves to the next step if the current one validates. Otherwise the
// position is unchanged and the first blocking message is returned.
func (s *Session) Advance() (*model.ValidationMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps.Next()
}

// Retreat moves back one step. On the first step it asks the navigator to
// leave the wizard and returns true.
func (s *Session) Retreat() bool {
	s.mu.Lock()
	exit := s.steps.Previous()
	nav := s.nav
	s.mu.Unlock()

	if exit {
		nav.Exit()
	}
	return exit
}

// JumpTo moves to index, clamped to the valid range, and returns the new
// index. Jumps are not gated.
func (s *Session) JumpTo(index int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps.JumpTo(index)
	return s.steps.Index()
}

func (s *Session) IsLastStep() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps.IsLast()
}

// FieldValue returns the raw text of name, or "" when unset.
func (s *Session) FieldValue(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields.Get(name)
}

// SetField stores value as entered and recomputes fields derived from name.
func (s *Session) SetField(name, value string) error {
	if _, ok := s.schema.Field(name); !ok {
		return fmt.Errorf("%s.%s: %w", s.kind, name, apperr.ErrUnknownField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields.Set(name, value)
	for _, d := range s.schema.DerivationsFor(name) {
		if v, ok := d.Compute(s.fields.Get); ok {
			s.fields.Set(d.Target, v)
		}
	}
	s.dirty = true
	return nil
}

func (s *Session) collection(name string) (*collection.Field, error) {
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", s.kind, name, apperr.ErrUnknownField)
	}
	return c, nil
}

func (s *Session) SubRecords(name string) ([]model.SubRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(name)
	if err != nil {
		return nil, err
	}
	return c.Records(), nil
}

// AddSubRecord appends a blank record and returns its local id.
func (s *Session) AddSubRecord(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(name)
	if err != nil {
		return "", err
	}
	s.dirty = true
	return c.Add(model.SubRecord{}), nil
}

func (s *Session) UpdateSubRecord(name, localID, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(name)
	if err != nil {
		return err
	}
	if err := c.Update(localID, field, value); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// RemoveSubRecord deletes a record. Removing the last one blanks it instead.
func (s *Session) RemoveSubRecord(name, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(name)
	if err != nil {
		return err
	}
	if err := c.Remove(localID); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

func (s *Session) Attachments() []model.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attachments.List()
}

// AddAttachments merges files into the set, skipping URIs already present,
// and returns how many were added.
func (s *Session) AddAttachments(files []model.Attachment) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.attachments.MergeAdd(files)
	if n > 0 {
		s.dirty = true
	}
	return n
}

func (s *Session) RemoveAttachment(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.attachments.RemoveByURI(uri)
	if ok {
		s.dirty = true
	}
	return ok
}

// Dirty reports whether anything was edited since the session started or was
// last reset.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty || s.fields.Dirty()
}

// Reset discards every edit and returns to step 0.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.fields.Reset()
	for _, c := range s.collections {
		c.Reset()
	}
	s.attachments.Reset()
	s.steps.Reset()
	s.dirty = false
}

// Close detaches the session. Reference lists and submit outcomes arriving
// afterwards are dropped. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.metrics.SessionClosed()
	s.logger.Debug("session closed")
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// view reads session state for validation and payload building. Callers hold
// s.mu.
type view struct{ s *Session }

func (v view) Field(name string) string { return v.s.fields.Get(name) }

func (v view) Records(name string) []model.SubRecord {
	c, ok := v.s.collections[name]
	if !ok {
		return nil
	}
	return c.Records()
}

func (v view) Attachments() []model.Attachment { return v.s.attachments.List() }
