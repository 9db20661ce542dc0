package engine

import (
	"agency-intake/internal/jsonpatch"
	"agency-intake/internal/model"
	"agency-intake/internal/refdata"
	"agency-intake/internal/steps"
)

// Snapshot is a consistent copy of everything a screen renders.
type Snapshot struct {
	ID          string                       `json:"id"`
	Kind        model.Kind                   `json:"kind"`
	Step        StepInfo                     `json:"step"`
	Steps       []steps.Step                 `json:"steps"`
	Fields      map[string]string            `json:"fields"`
	Collections map[string][]model.SubRecord `json:"collections,omitempty"`
	Attachments []model.Attachment           `json:"attachments"`
	References  refdata.State                `json:"references"`
	Dirty       bool                         `json:"dirty"`
	Submitting  bool                         `json:"submitting"`
	// Blocker is the message that would stop Advance on the current step.
	Blocker *model.ValidationMessage `json:"blocker,omitempty"`
}

// View returns a snapshot of the session.
func (s *Session) View() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:          s.id,
		Kind:        s.kind,
		Step:        s.stepInfo(),
		Steps:       s.steps.Steps(),
		Fields:      s.fields.Snapshot(),
		Attachments: s.attachments.List(),
		References:  s.refs.Clone(),
		Dirty:       s.dirty || s.fields.Dirty(),
		Submitting:  s.submitting,
		Blocker:     s.steps.Blocker(),
	}
	if len(s.collections) > 0 {
		snap.Collections = make(map[string][]model.SubRecord, len(s.collections))
		for name, c := range s.collections {
			snap.Collections[name] = c.Records()
		}
	}
	return snap
}

// changeDoc is the part of a session that counts as user input. Local ids are
// left out so a fresh blank record equals the default one.
type changeDoc struct {
	Fields      map[string]string            `json:"fields"`
	Collections map[string][]model.SubRecord `json:"collections"`
	Attachments []model.Attachment           `json:"attachments"`
}

func (s *Session) changeDocs() (base, current changeDoc) {
	base = changeDoc{
		Fields:      s.fields.Defaults(),
		Collections: map[string][]model.SubRecord{},
		Attachments: []model.Attachment{},
	}
	current = changeDoc{
		Fields:      s.fields.Snapshot(),
		Collections: map[string][]model.SubRecord{},
		Attachments: s.attachments.List(),
	}
	for name, c := range s.collections {
		base.Collections[name] = []model.SubRecord{{Relationship: model.RelationshipSelf}}
		recs := c.Records()
		for i := range recs {
			recs[i].LocalID = ""
		}
		current.Collections[name] = recs
	}
	return base, current
}

// Changes lists the edits that separate the session from a fresh one of the
// same kind, as JSON patch operations. An empty result means there is nothing
// to lose by leaving.
func (s *Session) Changes() ([]jsonpatch.Operation, error) {
	s.mu.Lock()
	base, current := s.changeDocs()
	s.mu.Unlock()
	return jsonpatch.Between(base, current)
}
