package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/cv"
)

func TestNew_SeedsTemplate(t *testing.T) {
	s := New("en")
	def := cv.DefaultCV()

	assert.Equal(t, def, s.Display())
	src := s.Source()
	assert.Equal(t, def, src.Data)
	assert.Equal(t, "en", src.Lang)
}

func TestNew_EmptyLangDefaultsToEnglish(t *testing.T) {
	s := New("")
	assert.Equal(t, "en", s.Source().Lang)
}

func TestDisplay_ReturnsCopy(t *testing.T) {
	s := New("en")
	doc := s.Display()
	doc.Name = "mutated"
	doc.Skills[0] = "mutated"

	assert.NotEqual(t, "mutated", s.Display().Name)
	assert.NotEqual(t, "mutated", s.Display().Skills[0])
}

func TestSource_ReturnsCopy(t *testing.T) {
	s := New("en")
	snap := s.Source()
	snap.Data.Name = "mutated"

	assert.NotEqual(t, "mutated", s.Source().Data.Name)
}

func TestReplaceBoth(t *testing.T) {
	s := New("en")
	doc := cv.DefaultCV()
	doc.Name = "Jane Doe"

	s.ReplaceBoth(doc, "vi")

	assert.Equal(t, "Jane Doe", s.Display().Name)
	src := s.Source()
	assert.Equal(t, "Jane Doe", src.Data.Name)
	assert.Equal(t, "vi", src.Lang)

	// Later mutation of the caller's document must not leak in.
	doc.Name = "mutated"
	assert.Equal(t, "Jane Doe", s.Display().Name)
}

func TestSetDisplayOnly_LeavesSourceAlone(t *testing.T) {
	s := New("en")
	doc := cv.DefaultCV()
	doc.Title = "Translated Title"

	s.SetDisplayOnly(doc)

	assert.Equal(t, "Translated Title", s.Display().Title)
	assert.Equal(t, cv.DefaultCV().Title, s.Source().Data.Title)
	assert.Equal(t, "en", s.Source().Lang)
}

func TestRevertDisplayToSource(t *testing.T) {
	s := New("en")
	doc := cv.DefaultCV()
	doc.Title = "Half Translated"
	s.SetDisplayOnly(doc)
	require.Equal(t, "Half Translated", s.Display().Title)

	s.RevertDisplayToSource()

	assert.Equal(t, cv.DefaultCV().Title, s.Display().Title)
}

func TestSnapshotImmuneToLaterWrites(t *testing.T) {
	s := New("en")
	before := s.Source()

	doc := cv.DefaultCV()
	doc.Name = "New Owner"
	s.ReplaceBoth(doc, "vi")

	// The snapshot handed out earlier still shows the old state.
	assert.Equal(t, cv.DefaultCV().Name, before.Data.Name)
	assert.Equal(t, "en", before.Lang)
}
