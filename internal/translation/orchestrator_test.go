package translation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/store"
)

type translatorCall struct {
	key     cv.SectionKey
	content any
	lang    string
}

// fakeTranslator records every call. Text sections come back prefixed with
// the target language so tests can tell translated content from source
// content; list and contact sections come back shape-identical.
type fakeTranslator struct {
	mu     sync.Mutex
	calls  []translatorCall
	failOn cv.SectionKey
	block  chan struct{}
}

func (f *fakeTranslator) TranslateSection(_ context.Context, key cv.SectionKey, content any, targetLang string) (json.RawMessage, error) {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	f.calls = append(f.calls, translatorCall{key: key, content: content, lang: targetLang})
	f.mu.Unlock()

	if key == f.failOn {
		return nil, errors.New("model rejected the content")
	}

	if key.Kind() == cv.KindText {
		s, ok := content.(string)
		if !ok {
			return nil, errors.New("text section content is not a string")
		}
		return json.Marshal(targetLang + ":" + s)
	}
	return json.Marshal(content)
}

func (f *fakeTranslator) calledKeys() []cv.SectionKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]cv.SectionKey, 0, len(f.calls))
	for _, c := range f.calls {
		keys = append(keys, c.key)
	}
	return keys
}

func newTestOrchestrator(tr SectionTranslator) (*Orchestrator, *store.Store) {
	st := store.New("en")
	return NewOrchestrator(st, tr, WithCooldown(20*time.Millisecond)), st
}

func TestRun_TranslatesAllSectionsInOrder(t *testing.T) {
	tr := &fakeTranslator{}
	orch, st := newTestOrchestrator(tr)

	err := orch.Run(context.Background(), "vi", nil)
	require.NoError(t, err)

	// The template document has content in every section, so all ten are
	// visited in the fixed order.
	assert.Equal(t, cv.SectionKeys, tr.calledKeys())

	display := st.Display()
	assert.Equal(t, "vi:"+cv.DefaultCV().Name, display.Name)
	assert.Equal(t, "vi:"+cv.DefaultCV().Title, display.Title)

	// The source snapshot never changes during a run.
	src := st.Source()
	assert.Equal(t, cv.DefaultCV(), src.Data)
	assert.Equal(t, "en", src.Lang)
}

func TestRun_SkipsEmptySections(t *testing.T) {
	tr := &fakeTranslator{}
	orch, st := newTestOrchestrator(tr)

	doc := cv.DefaultCV()
	doc.Profile = ""
	doc.Projects = []cv.Project{}
	doc.Interests = []string{}
	st.ReplaceBoth(doc, "en")

	err := orch.Run(context.Background(), "vi", nil)
	require.NoError(t, err)

	keys := tr.calledKeys()
	assert.NotContains(t, keys, cv.SectionProfile)
	assert.NotContains(t, keys, cv.SectionProjects)
	assert.NotContains(t, keys, cv.SectionInterests)
	assert.Contains(t, keys, cv.SectionName)
	assert.Contains(t, keys, cv.SectionContact)

	// A skipped section keeps its source content in the display.
	assert.Equal(t, "", st.Display().Profile)
}

func TestRun_ProgressiveReveal(t *testing.T) {
	tr := &fakeTranslator{}
	orch, _ := newTestOrchestrator(tr)

	var events []ProgressEvent
	err := orch.Run(context.Background(), "vi", func(e ProgressEvent) {
		events = append(events, e)
	})
	require.NoError(t, err)

	// Two events per section plus the terminal event.
	require.Len(t, events, 2*len(cv.SectionKeys)+1)

	// The first pair covers the name section: announcement, then result
	// carrying the document with only that section translated.
	assert.Equal(t, cv.SectionName, events[0].Section)
	assert.Equal(t, "Translating name...", events[0].Message)
	assert.Nil(t, events[0].Document)

	require.NotNil(t, events[1].Document)
	assert.Equal(t, "vi:"+cv.DefaultCV().Name, events[1].Document.Name)
	assert.Equal(t, cv.DefaultCV().Title, events[1].Document.Title)

	last := events[len(events)-1]
	assert.Equal(t, StateCompleted.String(), last.State)
	assert.Equal(t, "Translation complete!", last.Message)
}

func TestRun_FailureRevertsDisplay(t *testing.T) {
	tr := &fakeTranslator{failOn: cv.SectionEducation}
	orch, st := newTestOrchestrator(tr)

	var events []ProgressEvent
	err := orch.Run(context.Background(), "vi", func(e ProgressEvent) {
		events = append(events, e)
	})

	var sectionErr *SectionError
	require.ErrorAs(t, err, &sectionErr)
	assert.Equal(t, cv.SectionEducation, sectionErr.Section)

	// Sections after the failing one were never attempted.
	keys := tr.calledKeys()
	assert.Equal(t, cv.SectionEducation, keys[len(keys)-1])
	assert.NotContains(t, keys, cv.SectionProjects)

	// The partially translated display is gone.
	assert.Equal(t, cv.DefaultCV(), st.Display())

	last := events[len(events)-1]
	assert.Equal(t, StateFailed.String(), last.State)
	assert.Equal(t, "Translation failed", last.Message)
}

func TestRun_NoOpWhenSourceMatchesTarget(t *testing.T) {
	tr := &fakeTranslator{}
	orch, st := newTestOrchestrator(tr)

	// Leave a stale translation in the display first.
	doc := cv.DefaultCV()
	doc.Name = "vi:stale"
	st.SetDisplayOnly(doc)

	called := false
	err := orch.Run(context.Background(), "en", func(ProgressEvent) { called = true })
	require.NoError(t, err)

	assert.Empty(t, tr.calledKeys())
	assert.False(t, called)
	assert.Equal(t, cv.DefaultCV(), st.Display())
	// The fast path never claims the busy flag.
	assert.False(t, orch.Busy())
	assert.Equal(t, StateIdle, orch.State())
}

func TestRun_RejectsConcurrentRun(t *testing.T) {
	tr := &fakeTranslator{block: make(chan struct{})}
	orch, _ := newTestOrchestrator(tr)

	done := make(chan error, 1)
	go func() {
		done <- orch.Run(context.Background(), "vi", nil)
	}()

	require.Eventually(t, orch.Busy, time.Second, time.Millisecond)

	err := orch.Run(context.Background(), "ja", nil)
	assert.ErrorIs(t, err, ErrBusy)

	close(tr.block)
	require.NoError(t, <-done)
}

func TestRun_BusyThroughCooldown(t *testing.T) {
	tr := &fakeTranslator{}
	orch, _ := newTestOrchestrator(tr)

	require.NoError(t, orch.Run(context.Background(), "vi", nil))

	// Run has returned but the cooldown still holds the busy flag.
	assert.True(t, orch.Busy())
	assert.Equal(t, StateCompleted, orch.State())
	assert.ErrorIs(t, orch.Run(context.Background(), "ja", nil), ErrBusy)

	require.Eventually(t, func() bool {
		return !orch.Busy() && orch.State() == StateIdle
	}, time.Second, time.Millisecond)
}

func TestRun_AlwaysTranslatesFromSource(t *testing.T) {
	tr := &fakeTranslator{}
	orch, _ := newTestOrchestrator(tr)

	require.NoError(t, orch.Run(context.Background(), "vi", nil))
	require.Eventually(t, func() bool { return !orch.Busy() }, time.Second, time.Millisecond)
	require.NoError(t, orch.Run(context.Background(), "ja", nil))

	// The second run's input is the untouched source, not the Vietnamese
	// display left behind by the first run.
	var jaNameInput any
	tr.mu.Lock()
	for _, c := range tr.calls {
		if c.lang == "ja" && c.key == cv.SectionName {
			jaNameInput = c.content
		}
	}
	tr.mu.Unlock()
	assert.Equal(t, cv.DefaultCV().Name, jaNameInput)
}

func TestBeginExclusive_SharedWithRun(t *testing.T) {
	tr := &fakeTranslator{}
	orch, _ := newTestOrchestrator(tr)

	require.NoError(t, orch.BeginExclusive())
	assert.ErrorIs(t, orch.BeginExclusive(), ErrBusy)
	assert.ErrorIs(t, orch.Run(context.Background(), "vi", nil), ErrBusy)
	assert.Empty(t, tr.calledKeys())

	orch.EndExclusive()
	assert.NoError(t, orch.Run(context.Background(), "vi", nil))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "failed", StateFailed.String())
}
