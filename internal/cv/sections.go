package cv

import (
	"encoding/json"
	"fmt"
)

// SectionKey identifies one top-level field of a CVData treated as an
// independent translation unit.
type SectionKey string

// The ten section keys, named after their JSON fields.
const (
	SectionName           SectionKey = "name"
	SectionTitle          SectionKey = "title"
	SectionProfile        SectionKey = "profile"
	SectionWorkExperience SectionKey = "workExperience"
	SectionEducation      SectionKey = "education"
	SectionProjects       SectionKey = "projects"
	SectionSkills         SectionKey = "skills"
	SectionLanguages      SectionKey = "languages"
	SectionInterests      SectionKey = "interests"
	SectionContact        SectionKey = "contact"
)

// SectionKeys is the fixed order in which sections are translated and
// progress is reported.
var SectionKeys = []SectionKey{
	SectionName,
	SectionTitle,
	SectionProfile,
	SectionWorkExperience,
	SectionEducation,
	SectionProjects,
	SectionSkills,
	SectionLanguages,
	SectionInterests,
	SectionContact,
}

// SectionKind is the runtime shape of a section's content.
type SectionKind int

// Section content kinds.
const (
	KindText SectionKind = iota
	KindStringList
	KindWorkExperienceList
	KindEducationList
	KindProjectList
	KindContact
)

// Kind returns the content kind bound to a section key.
func (k SectionKey) Kind() SectionKind {
	switch k {
	case SectionName, SectionTitle, SectionProfile:
		return KindText
	case SectionSkills, SectionLanguages, SectionInterests:
		return KindStringList
	case SectionWorkExperience:
		return KindWorkExperienceList
	case SectionEducation:
		return KindEducationList
	case SectionProjects:
		return KindProjectList
	case SectionContact:
		return KindContact
	}
	return KindText
}

// Valid reports whether k is one of the ten section keys.
func (k SectionKey) Valid() bool {
	for _, known := range SectionKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Section returns the content of one section. The second return value is
// false for unknown keys.
func (d CVData) Section(key SectionKey) (any, bool) {
	switch key {
	case SectionName:
		return d.Name, true
	case SectionTitle:
		return d.Title, true
	case SectionProfile:
		return d.Profile, true
	case SectionWorkExperience:
		return d.WorkExperience, true
	case SectionEducation:
		return d.Education, true
	case SectionProjects:
		return d.Projects, true
	case SectionSkills:
		return d.Skills, true
	case SectionLanguages:
		return d.Languages, true
	case SectionInterests:
		return d.Interests, true
	case SectionContact:
		return d.Contact, true
	}
	return nil, false
}

// EmptySection reports whether section content is empty for translation
// purposes: an empty string or a list with zero elements. The contact block
// is a fixed-shape record and is never considered empty.
func EmptySection(content any) bool {
	switch v := content.(type) {
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []WorkExperience:
		return len(v) == 0
	case []Education:
		return len(v) == 0
	case []Project:
		return len(v) == 0
	}
	return false
}

// ApplySection decodes raw JSON content for one section and returns a copy of
// the document with that section replaced. The raw value must match the
// section's declared shape; anything else is an error, never a partial write.
func ApplySection(doc CVData, key SectionKey, raw json.RawMessage) (CVData, error) {
	out := doc.Clone()
	switch key.Kind() {
	case KindText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return CVData{}, fmt.Errorf("section %s: expected string: %w", key, err)
		}
		switch key {
		case SectionName:
			out.Name = s
		case SectionTitle:
			out.Title = s
		case SectionProfile:
			out.Profile = s
		}
	case KindStringList:
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return CVData{}, fmt.Errorf("section %s: expected string list: %w", key, err)
		}
		switch key {
		case SectionSkills:
			out.Skills = list
		case SectionLanguages:
			out.Languages = list
		case SectionInterests:
			out.Interests = list
		}
	case KindWorkExperienceList:
		var list []WorkExperience
		if err := json.Unmarshal(raw, &list); err != nil {
			return CVData{}, fmt.Errorf("section %s: expected work experience list: %w", key, err)
		}
		out.WorkExperience = list
	case KindEducationList:
		var list []Education
		if err := json.Unmarshal(raw, &list); err != nil {
			return CVData{}, fmt.Errorf("section %s: expected education list: %w", key, err)
		}
		out.Education = list
	case KindProjectList:
		var list []Project
		if err := json.Unmarshal(raw, &list); err != nil {
			return CVData{}, fmt.Errorf("section %s: expected project list: %w", key, err)
		}
		out.Projects = list
	case KindContact:
		var c PartialContact
		if err := json.Unmarshal(raw, &c); err != nil {
			return CVData{}, fmt.Errorf("section %s: expected contact object: %w", key, err)
		}
		// A partial contact must never wipe the whole block.
		out.Contact = mergeContact(out.Contact, c)
	}
	return out, nil
}
