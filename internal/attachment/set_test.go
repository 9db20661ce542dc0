package attachment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agency-intake/internal/model"
)

func file(uri string) model.Attachment {
	return model.Attachment{URI: uri, Name: uri + ".pdf", MimeType: "application/pdf"}
}

func TestMergeAddSkipsExistingAndBatchDuplicates(t *testing.T) {
	s := New()
	assert.Equal(t, 2, s.MergeAdd([]model.Attachment{file("a"), file("b")}))
	assert.Equal(t, 1, s.MergeAdd([]model.Attachment{file("b"), file("c"), file("c")}))

	assert.Equal(t, []model.Attachment{file("a"), file("b"), file("c")}, s.List())
}

func TestMergeAddIsIdempotent(t *testing.T) {
	batch := []model.Attachment{file("x"), file("y"), file("x")}

	once := New()
	once.MergeAdd(batch)

	twice := New()
	twice.MergeAdd(batch)
	assert.Equal(t, 0, twice.MergeAdd(batch))

	assert.Equal(t, once.List(), twice.List())
}

func TestMergeAddIgnoresEmptyURI(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.MergeAdd([]model.Attachment{{Name: "nameless"}}))
	assert.Equal(t, 0, s.Len())
}

func TestRemoveByURI(t *testing.T) {
	s := New()
	s.MergeAdd([]model.Attachment{file("a"), file("b"), file("c")})

	assert.True(t, s.RemoveByURI("b"))
	assert.False(t, s.RemoveByURI("b"))
	assert.Equal(t, []model.Attachment{file("a"), file("c")}, s.List())

	s.Reset()
	assert.Empty(t, s.List())
}
