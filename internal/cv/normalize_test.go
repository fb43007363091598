package cv

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalize_ZeroPartial(t *testing.T) {
	doc := Normalize(Partial{})
	def := DefaultCV()

	// Scalars and plain string lists keep the default document's values.
	assert.Equal(t, def.Name, doc.Name)
	assert.Equal(t, def.Title, doc.Title)
	assert.Equal(t, def.Profile, doc.Profile)
	assert.Equal(t, def.Contact, doc.Contact)
	assert.Equal(t, def.Skills, doc.Skills)
	assert.Equal(t, def.Languages, doc.Languages)
	assert.Equal(t, def.Interests, doc.Interests)

	// Record lists become empty, never the default's entries.
	assert.Empty(t, doc.WorkExperience)
	assert.Empty(t, doc.Education)
	assert.Empty(t, doc.Projects)
	assert.NotNil(t, doc.WorkExperience)
	assert.NotNil(t, doc.Education)
	assert.NotNil(t, doc.Projects)
}

func TestNormalize_PresentValuesWin(t *testing.T) {
	doc := Normalize(Partial{
		Name:      strPtr("Jane Doe"),
		Title:     strPtr(""),
		Skills:    []string{},
		Languages: []string{"French"},
	})

	assert.Equal(t, "Jane Doe", doc.Name)
	// Present but empty is still present.
	assert.Equal(t, "", doc.Title)
	assert.Equal(t, []string{}, doc.Skills)
	assert.Equal(t, []string{"French"}, doc.Languages)
	// Untouched scalar falls back to the default.
	assert.Equal(t, DefaultCV().Profile, doc.Profile)
}

func TestNormalize_JSONNullIsAbsent(t *testing.T) {
	var p Partial
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": null,
		"skills": null,
		"workExperience": null,
		"contact": null
	}`), &p))

	doc := Normalize(p)
	def := DefaultCV()

	assert.Equal(t, def.Name, doc.Name)
	assert.Equal(t, def.Skills, doc.Skills)
	assert.Equal(t, def.Contact, doc.Contact)
	assert.Empty(t, doc.WorkExperience)
}

func TestNormalize_ContactMergedKeyByKey(t *testing.T) {
	doc := Normalize(Partial{
		Contact: &PartialContact{
			Email: strPtr("jane@example.com"),
			Phone: strPtr(""),
		},
	})

	def := DefaultCV()
	assert.Equal(t, "jane@example.com", doc.Contact.Email)
	assert.Equal(t, "", doc.Contact.Phone)
	// Keys absent from the partial keep the default's values.
	assert.Equal(t, def.Contact.Location, doc.Contact.Location)
	assert.Equal(t, def.Contact.LinkedIn, doc.Contact.LinkedIn)
	assert.Equal(t, def.Contact.Portfolio, doc.Contact.Portfolio)
}

func TestNormalize_RecordShapes(t *testing.T) {
	doc := Normalize(Partial{
		WorkExperience: []WorkExperience{{Role: "Engineer"}},
		Education:      []Education{{Degree: "BSc"}},
		Projects:       []Project{{Name: "Thing"}},
	})

	require.Len(t, doc.WorkExperience, 1)
	assert.Equal(t, "Engineer", doc.WorkExperience[0].Role)
	assert.Equal(t, "", doc.WorkExperience[0].Company)
	assert.NotNil(t, doc.WorkExperience[0].Responsibilities)

	require.Len(t, doc.Education, 1)
	assert.Equal(t, "", doc.Education[0].Institution)

	require.Len(t, doc.Projects, 1)
	assert.Equal(t, "", doc.Projects[0].Description)
}

func TestNormalize_UnknownKeysDropped(t *testing.T) {
	var p Partial
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "Jane",
		"salary": 90000,
		"workExperience": [{"role": "Dev", "stack": ["Go"]}]
	}`), &p))

	doc := Normalize(p)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var round map[string]any
	require.NoError(t, json.Unmarshal(raw, &round))
	assert.NotContains(t, round, "salary")

	work := round["workExperience"].([]any)[0].(map[string]any)
	assert.NotContains(t, work, "stack")
	assert.Contains(t, work, "responsibilities")
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize(Partial{Name: strPtr("Jane"), Skills: []string{"Go"}})

	raw, err := json.Marshal(first)
	require.NoError(t, err)
	var p Partial
	require.NoError(t, json.Unmarshal(raw, &p))
	second := Normalize(p)

	// The record lists were emptied on the first pass, so the second pass has
	// nothing left to repair.
	assert.Equal(t, first, second)
}

func TestSanitized_RepairsNilSlices(t *testing.T) {
	doc := CVData{
		Name:           "Jane",
		WorkExperience: []WorkExperience{{Role: "Dev"}},
	}

	clean := doc.Sanitized()
	assert.NotNil(t, clean.Skills)
	assert.NotNil(t, clean.Languages)
	assert.NotNil(t, clean.Interests)
	assert.NotNil(t, clean.Education)
	assert.NotNil(t, clean.Projects)
	assert.NotNil(t, clean.WorkExperience[0].Responsibilities)

	// Existing content survives untouched.
	assert.Equal(t, "Jane", clean.Name)
	assert.Equal(t, "Dev", clean.WorkExperience[0].Role)
}

func TestSanitized_DoesNotMutateReceiver(t *testing.T) {
	doc := CVData{}
	_ = doc.Sanitized()
	assert.Nil(t, doc.Skills)
}
