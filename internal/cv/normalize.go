package cv

// Partial is the loosely-shaped form of a CV document as returned by the
// extraction service. Pointer fields distinguish absent input from present
// empty input; unknown keys are dropped by the JSON decoder.
type Partial struct {
	Name           *string          `json:"name"`
	Title          *string          `json:"title"`
	Contact        *PartialContact  `json:"contact"`
	Profile        *string          `json:"profile"`
	Skills         []string         `json:"skills"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Education      []Education      `json:"education"`
	Projects       []Project        `json:"projects"`
	Languages      []string         `json:"languages"`
	Interests      []string         `json:"interests"`
}

// PartialContact is the loose form of the contact block. Each field is merged
// individually so a partial contact never wipes out the rest of the block.
type PartialContact struct {
	Location  *string `json:"location"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	LinkedIn  *string `json:"linkedin"`
	Portfolio *string `json:"portfolio"`
}

// Normalize repairs a partial document into the canonical shape. It is total
// and pure: any input, including the zero Partial, yields a document where
// every field is present, every slice is non-nil, and every record has
// exactly the keys of its type.
//
// Merge policy: scalar fields and the plain string lists keep the default
// document's value when absent (JSON null counts as absent). Contact is
// merged key by key against the default contact. The three record lists are
// rebuilt element by element and become empty, not the default's entries,
// when absent.
func Normalize(p Partial) CVData {
	doc := DefaultCV()

	if p.Name != nil {
		doc.Name = *p.Name
	}
	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Profile != nil {
		doc.Profile = *p.Profile
	}

	if p.Contact != nil {
		doc.Contact = mergeContact(doc.Contact, *p.Contact)
	}

	if p.Skills != nil {
		doc.Skills = cloneStrings(p.Skills)
	}
	if p.Languages != nil {
		doc.Languages = cloneStrings(p.Languages)
	}
	if p.Interests != nil {
		doc.Interests = cloneStrings(p.Interests)
	}

	doc.WorkExperience = make([]WorkExperience, 0, len(p.WorkExperience))
	for _, w := range p.WorkExperience {
		doc.WorkExperience = append(doc.WorkExperience, WorkExperience{
			Role:             w.Role,
			Company:          w.Company,
			Period:           w.Period,
			Location:         w.Location,
			Responsibilities: cloneStrings(w.Responsibilities),
		})
	}

	doc.Education = make([]Education, 0, len(p.Education))
	for _, e := range p.Education {
		doc.Education = append(doc.Education, Education{
			Degree:      e.Degree,
			Institution: e.Institution,
			Year:        e.Year,
		})
	}

	doc.Projects = make([]Project, 0, len(p.Projects))
	for _, pr := range p.Projects {
		doc.Projects = append(doc.Projects, Project{
			Name:        pr.Name,
			Description: pr.Description,
		})
	}

	return doc
}

func mergeContact(base Contact, p PartialContact) Contact {
	if p.Location != nil {
		base.Location = *p.Location
	}
	if p.Phone != nil {
		base.Phone = *p.Phone
	}
	if p.Email != nil {
		base.Email = *p.Email
	}
	if p.LinkedIn != nil {
		base.LinkedIn = *p.LinkedIn
	}
	if p.Portfolio != nil {
		base.Portfolio = *p.Portfolio
	}
	return base
}

// Sanitized is the typed-world counterpart of Normalize: it rebuilds the
// document so every slice is non-nil and every record keeps its exact shape.
// The translation orchestrator runs it over the whole working copy after each
// section merge, so a translator response that decoded with nil slices can
// never reach the display state.
func (d CVData) Sanitized() CVData {
	out := d.Clone()
	if out.Skills == nil {
		out.Skills = []string{}
	}
	if out.Languages == nil {
		out.Languages = []string{}
	}
	if out.Interests == nil {
		out.Interests = []string{}
	}
	if out.WorkExperience == nil {
		out.WorkExperience = []WorkExperience{}
	}
	for i := range out.WorkExperience {
		if out.WorkExperience[i].Responsibilities == nil {
			out.WorkExperience[i].Responsibilities = []string{}
		}
	}
	if out.Education == nil {
		out.Education = []Education{}
	}
	if out.Projects == nil {
		out.Projects = []Project{}
	}
	return out
}
