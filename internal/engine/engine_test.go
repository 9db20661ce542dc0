package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-intake/internal/apperr"
	"agency-intake/internal/jsonpatch"
	"agency-intake/internal/model"
	"agency-intake/internal/schema"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	calls    int
	kind     model.Kind
	payload  model.Payload
	token    string
	respond  func(ctx context.Context) (model.SubmitResponse, error)
	started  chan struct{}
	startOne sync.Once
}

func (f *fakeSubmitter) Submit(ctx context.Context, token string, kind model.Kind, p model.Payload) (model.SubmitResponse, error) {
	f.mu.Lock()
	f.calls++
	f.kind, f.payload, f.token = kind, p, token
	respond := f.respond
	f.mu.Unlock()
	if f.started != nil {
		f.startOne.Do(func() { close(f.started) })
	}
	if respond == nil {
		return model.SubmitResponse{Status: true, Data: &model.SubmitData{ID: "rec-1", PolicyNumber: "HP-2024-001"}}, nil
	}
	return respond(ctx)
}

func (f *fakeSubmitter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNavigator struct {
	exits     atomic.Int32
	submitted chan model.SubmissionResult
}

func (n *fakeNavigator) Exit() { n.exits.Add(1) }

func (n *fakeNavigator) Submitted(r model.SubmissionResult) { n.submitted <- r }

func newNavigator() *fakeNavigator {
	return &fakeNavigator{submitted: make(chan model.SubmissionResult, 1)}
}

var signedIn = TokenFunc(func() (string, bool) { return "agent-token", true })

func newSession(t *testing.T, kind model.Kind, sub *fakeSubmitter, opts Options) *Session {
	t.Helper()
	opts.Submitter = sub
	if opts.Tokens == nil {
		opts.Tokens = signedIn
	}
	s, err := New(kind, opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func fillHealth(t *testing.T, s *Session) {
	t.Helper()
	values := []struct{ name, value string }{
		{schema.FieldClientID, "cust-7"},
		{schema.FieldPolicyHolderName, "Asha Rao"},
		{schema.FieldInsuranceCompany, "co-3"},
		{schema.FieldPolicyType, "Family Floater"},
		{schema.FieldPolicyNumber, "HP-2024-001"},
		{schema.FieldStartDate, "01/04/2024"},
		{schema.FieldEndDate, "31/03/2025"},
		{schema.FieldSumInsured, "500000"},
		{schema.FieldNetPremium, "20000"},
	}
	for _, v := range values {
		require.NoError(t, s.SetField(v.name, v.value))
	}
	recs, err := s.SubRecords(schema.CollectionMembers)
	require.NoError(t, err)
	require.NoError(t, s.UpdateSubRecord(schema.CollectionMembers, recs[0].LocalID, model.SubFieldFullName, "Asha Rao"))
	require.NoError(t, s.UpdateSubRecord(schema.CollectionMembers, recs[0].LocalID, model.SubFieldAge, "41"))
}

func advanceToLast(t *testing.T, s *Session) {
	t.Helper()
	for !s.IsLastStep() {
		msg, moved := s.Advance()
		require.Nil(t, msg)
		require.True(t, moved)
	}
}

func advanceTo(t *testing.T, s *Session, index int) {
	t.Helper()
	for s.CurrentStep().Index < index {
		msg, moved := s.Advance()
		require.Nil(t, msg)
		require.True(t, moved)
	}
}

func TestNewRejectsUnknownKindAndMissingCollaborators(t *testing.T) {
	_, err := New("boat", Options{Submitter: &fakeSubmitter{}, Tokens: signedIn})
	assert.True(t, errors.Is(err, apperr.ErrUnknownKind))

	_, err = New(model.KindLead, Options{Tokens: signedIn})
	assert.True(t, errors.Is(err, apperr.ErrInvalidConfig))

	_, err = New(model.KindLead, Options{Submitter: &fakeSubmitter{}})
	assert.True(t, errors.Is(err, apperr.ErrInvalidConfig))
}

func TestFreshSessionHasDefaults(t *testing.T) {
	s := newSession(t, model.KindHealthPolicy, &fakeSubmitter{}, Options{})

	assert.Equal(t, 0, s.CurrentStep().Index)
	assert.Equal(t, "Policy Details", s.CurrentStep().Name)
	assert.Equal(t, "Yearly", s.FieldValue(schema.FieldPaymentMode))
	assert.Equal(t, "18", s.FieldValue(schema.FieldGSTPercentage))
	assert.False(t, s.Dirty())

	recs, err := s.SubRecords(schema.CollectionMembers)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, model.RelationshipSelf, recs[0].Relationship)

	changes, err := s.Changes()
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestSetFieldDerivesTotalPremium(t *testing.T) {
	s := newSession(t, model.KindHealthPolicy, &fakeSubmitter{}, Options{})

	require.NoError(t, s.SetField(schema.FieldNetPremium, "20,000"))
	assert.Equal(t, "23600", s.FieldValue(schema.FieldTotalPremium))

	require.NoError(t, s.SetField(schema.FieldGSTPercentage, "5"))
	assert.Equal(t, "21000", s.FieldValue(schema.FieldTotalPremium))

	// An unparsable input leaves the last derived value in place.
	require.NoError(t, s.SetField(schema.FieldNetPremium, "abc"))
	assert.Equal(t, "21000", s.FieldValue(schema.FieldTotalPremium))

	err := s.SetField("favouriteColour", "blue")
	assert.True(t, errors.Is(err, apperr.ErrUnknownField))
	assert.True(t, s.Dirty())
}

// Scenario E.
func TestAdvanceBlockedByStepValidation(t *testing.T) {
	s := newSession(t, model.KindHealthPolicy, &fakeSubmitter{}, Options{})

	msg, moved := s.Advance()
	require.NotNil(t, msg)
	assert.False(t, moved)
	assert.Equal(t, "Please select client id", msg.Message)
	assert.Equal(t, 0, s.CurrentStep().Index)

	require.NoError(t, s.SetField(schema.FieldClientID, "cust-7"))
	msg, _ = s.Advance()
	require.NotNil(t, msg)
	assert.Equal(t, "Please enter policy holder name", msg.Message)
	assert.Equal(t, 0, s.CurrentStep().Index)
}

func TestRetreatAtFirstStepExits(t *testing.T) {
	nav := newNavigator()
	s := newSession(t, model.KindHealthPolicy, &fakeSubmitter{}, Options{Navigator: nav})

	assert.True(t, s.Retreat())
	assert.Equal(t, int32(1), nav.exits.Load())

	assert.Equal(t, 2, s.JumpTo(2))
	assert.False(t, s.Retreat())
	assert.Equal(t, 1, s.CurrentStep().Index)
	assert.Equal(t, int32(1), nav.exits.Load())

	assert.Equal(t, 4, s.JumpTo(99))
	assert.True(t, s.IsLastStep())
	assert.Equal(t, 0, s.JumpTo(-3))
}

// Scenario B.
func TestRemovingSoleMemberBlanksIt(t *testing.T) {
	s := newSession(t, model.KindHealthPolicy, &fakeSubmitter{}, Options{})
	recs, _ := s.SubRecords(schema.CollectionMembers)
	id := recs[0].LocalID
	require.NoError(t, s.UpdateSubRecord(schema.CollectionMembers, id, model.SubFieldFullName, "Asha"))
	require.NoError(t, s.UpdateSubRecord(schema.CollectionMembers, id, model.SubFieldRelationship, "Spouse"))

	require.NoError(t, s.RemoveSubRecord(schema.CollectionMembers, id))

	recs, _ = s.SubRecords(schema.CollectionMembers)
	require.Len(t, recs, 1)
	assert.Equal(t, model.SubRecord{LocalID: id, Relationship: model.RelationshipSelf}, recs[0])

	second, err := s.AddSubRecord(schema.CollectionMembers)
	require.NoError(t, err)
	recs, _ = s.SubRecords(schema.CollectionMembers)
	assert.Equal(t, model.RelationshipOther, recs[1].Relationship)
	require.NoError(t, s.RemoveSubRecord(schema.CollectionMembers, second))

	_, err = s.SubRecords("pets")
	assert.True(t, errors.Is(err, apperr.ErrUnknownField))
	err = s.RemoveSubRecord(schema.CollectionMembers, "missing")
	assert.True(t, errors.Is(err, apperr.ErrUnknownRecord))
}

func TestAttachmentsDeduplicate(t *testing.T) {
	s := newSession(t, model.KindCustomer, &fakeSubmitter{}, Options{})
	files := []model.Attachment{
		{URI: "file:///a.pdf", Name: "a.pdf", MimeType: "application/pdf"},
		{URI: "file:///b.jpg", Name: "b.jpg", MimeType: "image/jpeg"},
	}
	assert.Equal(t, 2, s.AddAttachments(files))
	assert.Equal(t, 0, s.AddAttachments(files))
	assert.Len(t, s.Attachments(), 2)

	assert.True(t, s.RemoveAttachment("file:///a.pdf"))
	assert.False(t, s.RemoveAttachment("file:///a.pdf"))
	assert.Equal(t, []model.Attachment{files[1]}, s.Attachments())
}

type fakePicker struct {
	files []model.Attachment
	err   error
}

func (p fakePicker) PickFiles(context.Context) ([]model.Attachment, error) { return p.files, p.err }

func TestPickAttachments(t *testing.T) {
	file := model.Attachment{URI: "content://1", Name: "rc.pdf", MimeType: "application/pdf"}

	s := newSession(t, model.KindMotorPolicy, &fakeSubmitter{}, Options{Picker: fakePicker{files: []model.Attachment{file, file}}})
	added, notice := s.PickAttachments(context.Background())
	assert.Equal(t, 1, added)
	assert.Empty(t, notice)

	s = newSession(t, model.KindMotorPolicy, &fakeSubmitter{}, Options{Picker: fakePicker{err: ErrPickCancelled}})
	added, notice = s.PickAttachments(context.Background())
	assert.Zero(t, added)
	assert.Equal(t, pickCancelledNotice, notice)
	assert.Empty(t, s.Attachments())

	s = newSession(t, model.KindMotorPolicy, &fakeSubmitter{}, Options{Picker: fakePicker{err: errors.New("permission denied")}})
	_, notice = s.PickAttachments(context.Background())
	assert.Equal(t, pickFailedNotice, notice)
	assert.Empty(t, s.Attachments())

	s = newSession(t, model.KindMotorPolicy, &fakeSubmitter{}, Options{})
	_, notice = s.PickAttachments(context.Background())
	assert.Equal(t, pickUnavailableNotice, notice)
}

func TestSubmitInvalidNeverCallsBackend(t *testing.T) {
	sub := &fakeSubmitter{}
	s := newSession(t, model.KindHealthPolicy, sub, Options{})
	fillHealth(t, s)
	require.NoError(t, s.SetField(schema.FieldEndDate, "01/01/2024"))

	res := s.Submit(context.Background())
	assert.Equal(t, model.OutcomeInvalid, res.Outcome)
	assert.Equal(t, "End date must be after start date", res.Message)
	assert.Equal(t, 1, res.Step)
	assert.Equal(t, model.CodeDateOrder, res.Code)
	assert.Zero(t, sub.Calls())
}

func TestSubmitRequiresLastStep(t *testing.T) {
	sub := &fakeSubmitter{}
	s := newSession(t, model.KindHealthPolicy, sub, Options{})
	fillHealth(t, s)
	s.JumpTo(1)

	res := s.Submit(context.Background())
	assert.Equal(t, model.OutcomeInvalid, res.Outcome)
	assert.Equal(t, finalStepMessage, res.Message)
	assert.Equal(t, model.CodeNotFinalStep, res.Code)
	assert.Equal(t, 1, res.Step)
	assert.Zero(t, sub.Calls())

	advanceToLast(t, s)
	assert.Equal(t, model.OutcomeOK, s.Submit(context.Background()).Outcome)
	assert.Equal(t, 1, sub.Calls())
}

func TestNonFiniteAmountsNeverReachTheBackend(t *testing.T) {
	sub := &fakeSubmitter{}
	s := newSession(t, model.KindHealthPolicy, sub, Options{})
	fillHealth(t, s)
	require.Equal(t, "23600", s.FieldValue(schema.FieldTotalPremium))

	require.NoError(t, s.SetField(schema.FieldNetPremium, "1e308"))
	assert.Equal(t, "23600", s.FieldValue(schema.FieldTotalPremium))
	require.NoError(t, s.SetField(schema.FieldNetPremium, "1"+strings.Repeat("0", 308)))
	assert.Equal(t, "23600", s.FieldValue(schema.FieldTotalPremium))

	require.NoError(t, s.SetField(schema.FieldNetPremium, "20000"))
	require.NoError(t, s.SetField(schema.FieldSumInsured, "NaN"))
	advanceTo(t, s, 2)

	res := s.Submit(context.Background())
	assert.Equal(t, model.OutcomeInvalid, res.Outcome)
	assert.Equal(t, "Please enter a valid sum insured", res.Message)
	assert.Zero(t, sub.Calls())
}

// Scenario A through the whole pipeline, then scenario F.
func TestSubmitSuccessResetsSession(t *testing.T) {
	sub := &fakeSubmitter{}
	nav := newNavigator()
	s := newSession(t, model.KindHealthPolicy, sub, Options{Navigator: nav})
	fillHealth(t, s)
	s.AddAttachments([]model.Attachment{{URI: "file:///p.pdf", Name: "p.pdf", MimeType: "application/pdf"}})
	advanceToLast(t, s)

	res := s.Submit(context.Background())
	require.Equal(t, model.OutcomeOK, res.Outcome, res.Message)
	assert.Equal(t, "Health policy created successfully", res.Message)
	assert.Equal(t, "HP-2024-001", res.PolicyNumber)
	assert.Equal(t, "rec-1", res.RecordID)

	assert.Equal(t, "agent-token", sub.token)
	hp, ok := sub.payload.(model.HealthPolicyPayload)
	require.True(t, ok)
	require.Len(t, hp.Members, 1)
	assert.Equal(t, 500000.0, hp.Members[0].SumInsured)
	assert.Equal(t, 23600.0, hp.TotalPremium)
	assert.Equal(t, "2025-03-31", hp.EndDate)

	assert.Equal(t, 0, s.CurrentStep().Index)
	assert.Equal(t, "", s.FieldValue(schema.FieldPolicyNumber))
	assert.Equal(t, "Yearly", s.FieldValue(schema.FieldPaymentMode))
	assert.Equal(t, "18", s.FieldValue(schema.FieldGSTPercentage))
	assert.Empty(t, s.Attachments())
	recs, _ := s.SubRecords(schema.CollectionMembers)
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].FullName)
	assert.False(t, s.Dirty())

	select {
	case got := <-nav.submitted:
		assert.Equal(t, res, got)
	default:
		t.Fatal("navigator was not notified")
	}
}

func TestSubmitUsesServerMessage(t *testing.T) {
	sub := &fakeSubmitter{respond: func(context.Context) (model.SubmitResponse, error) {
		return model.SubmitResponse{Status: true, Message: "Lead saved"}, nil
	}}
	s := newSession(t, model.KindLead, sub, Options{})
	require.NoError(t, s.SetField(schema.FieldFullName, "Ravi"))
	require.NoError(t, s.SetField(schema.FieldMobile, "+91 98765 43210"))
	require.NoError(t, s.SetField(schema.FieldInterestedIn, "Health"))
	advanceToLast(t, s)

	res := s.Submit(context.Background())
	assert.Equal(t, model.OutcomeOK, res.Outcome)
	assert.Equal(t, "Lead saved", res.Message)
	assert.Equal(t, model.KindLead, sub.kind)
}

// Scenario C.
func TestSubmitLogicalFailurePreservesState(t *testing.T) {
	sub := &fakeSubmitter{respond: func(context.Context) (model.SubmitResponse, error) {
		return model.SubmitResponse{Status: false, Message: "Policy number already exists"}, nil
	}}
	nav := newNavigator()
	s := newSession(t, model.KindHealthPolicy, sub, Options{Navigator: nav})
	fillHealth(t, s)
	advanceToLast(t, s)
	before := s.View()

	res := s.Submit(context.Background())
	assert.Equal(t, model.OutcomeLogicalFailure, res.Outcome)
	assert.Equal(t, "Policy number already exists", res.Message)

	after := s.View()
	assert.Equal(t, before.Fields, after.Fields)
	assert.Equal(t, before.Collections, after.Collections)
	assert.True(t, s.IsLastStep())
	assert.Empty(t, nav.submitted)
}

// Scenario D.
func TestSubmitTimeoutIsTransportFailure(t *testing.T) {
	sub := &fakeSubmitter{respond: func(ctx context.Context) (model.SubmitResponse, error) {
		<-ctx.Done()
		return model.SubmitResponse{}, apperr.WrapTransient(ctx.Err(), "agencyapi", "Submit", "request failed")
	}}
	s := newSession(t, model.KindHealthPolicy, sub, Options{SubmitTimeout: 20 * time.Millisecond})
	fillHealth(t, s)
	advanceToLast(t, s)
	before := s.View()

	res := s.Submit(context.Background())
	assert.Equal(t, model.OutcomeTransportFailure, res.Outcome)
	assert.Equal(t, TransportMessage, res.Message)
	assert.Equal(t, before.Fields, s.View().Fields)
	assert.True(t, s.IsLastStep())
}

func TestSubmitRejectionWithoutMessage(t *testing.T) {
	sub := &fakeSubmitter{respond: func(context.Context) (model.SubmitResponse, error) {
		return model.SubmitResponse{Status: false}, nil
	}}
	s := newSession(t, model.KindLead, sub, Options{})
	require.NoError(t, s.SetField(schema.FieldFullName, "Ravi"))
	require.NoError(t, s.SetField(schema.FieldMobile, "9876543210"))
	require.NoError(t, s.SetField(schema.FieldInterestedIn, "Health"))
	advanceToLast(t, s)

	res := s.Submit(context.Background())
	assert.Equal(t, model.OutcomeLogicalFailure, res.Outcome)
	assert.Equal(t, rejectedMessage, res.Message)
	assert.True(t, s.IsLastStep())
}

func TestSubmitWithoutToken(t *testing.T) {
	sub := &fakeSubmitter{}
	s := newSession(t, model.KindLead, sub, Options{Tokens: TokenFunc(func() (string, bool) { return "", false })})
	require.NoError(t, s.SetField(schema.FieldFullName, "Ravi"))
	require.NoError(t, s.SetField(schema.FieldMobile, "9876543210"))
	require.NoError(t, s.SetField(schema.FieldInterestedIn, "Life"))
	advanceToLast(t, s)

	res := s.Submit(context.Background())
	assert.Equal(t, model.OutcomeLogicalFailure, res.Outcome)
	assert.Equal(t, signInMessage, res.Message)
	assert.Zero(t, sub.Calls())
	assert.Equal(t, "Ravi", s.FieldValue(schema.FieldFullName))
}

func TestSecondSubmitWhileInFlightIsIgnored(t *testing.T) {
	release := make(chan struct{})
	sub := &fakeSubmitter{
		started: make(chan struct{}),
		respond: func(context.Context) (model.SubmitResponse, error) {
			<-release
			return model.SubmitResponse{Status: true}, nil
		},
	}
	s := newSession(t, model.KindLead, sub, Options{})
	require.NoError(t, s.SetField(schema.FieldFullName, "Ravi"))
	require.NoError(t, s.SetField(schema.FieldMobile, "9876543210"))
	require.NoError(t, s.SetField(schema.FieldInterestedIn, "Motor"))
	advanceToLast(t, s)

	first := make(chan model.SubmissionResult, 1)
	go func() { first <- s.Submit(context.Background()) }()
	<-sub.started
	assert.True(t, s.View().Submitting)

	second := s.Submit(context.Background())
	assert.Equal(t, model.OutcomeIgnored, second.Outcome)

	// Edits are still accepted while the call is in flight.
	require.NoError(t, s.SetField(schema.FieldNotes, "call back"))

	close(release)
	assert.Equal(t, model.OutcomeOK, (<-first).Outcome)
	assert.Equal(t, 1, sub.Calls())
	assert.False(t, s.View().Submitting)
}

func TestLateSubmitOutcomeAfterCloseIsDropped(t *testing.T) {
	release := make(chan struct{})
	nav := newNavigator()
	sub := &fakeSubmitter{
		started: make(chan struct{}),
		respond: func(context.Context) (model.SubmitResponse, error) {
			<-release
			return model.SubmitResponse{Status: true}, nil
		},
	}
	s := newSession(t, model.KindLead, sub, Options{Navigator: nav})
	require.NoError(t, s.SetField(schema.FieldFullName, "Ravi"))
	require.NoError(t, s.SetField(schema.FieldMobile, "9876543210"))
	require.NoError(t, s.SetField(schema.FieldInterestedIn, "Other"))
	advanceToLast(t, s)

	done := make(chan model.SubmissionResult, 1)
	go func() { done <- s.Submit(context.Background()) }()
	<-sub.started
	s.Close()
	close(release)

	res := <-done
	assert.Equal(t, model.OutcomeIgnored, res.Outcome)
	assert.Equal(t, "Ravi", s.FieldValue(schema.FieldFullName))
	assert.Empty(t, nav.submitted)
	assert.Equal(t, model.OutcomeIgnored, s.Submit(context.Background()).Outcome)
}

func TestChangesDescribeEdits(t *testing.T) {
	s := newSession(t, model.KindHealthPolicy, &fakeSubmitter{}, Options{})
	require.NoError(t, s.SetField(schema.FieldPolicyNumber, "HP-1"))
	require.NoError(t, s.SetField(schema.FieldPaymentMode, "Monthly"))
	s.AddAttachments([]model.Attachment{{URI: "file:///x", Name: "x", MimeType: "image/png"}})

	ops, err := s.Changes()
	require.NoError(t, err)
	paths := make(map[string]string, len(ops))
	for _, op := range ops {
		paths[op.Path] = op.Op
	}
	assert.Equal(t, jsonpatch.OpAdd, paths["/attachments/0"])
	assert.Equal(t, jsonpatch.OpAdd, paths["/fields/policyNumber"])
	assert.Equal(t, jsonpatch.OpReplace, paths["/fields/paymentMode"])

	s.Reset()
	ops, err = s.Changes()
	require.NoError(t, err)
	assert.Empty(t, ops)
}
