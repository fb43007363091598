// Package cv defines the canonical CV document model and the normalization
// rules that keep it well-shaped regardless of how malformed upstream
// extraction or translation output is.
package cv

// Contact holds the fixed-shape contact block of a CV.
type Contact struct {
	Location  string `json:"location"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	LinkedIn  string `json:"linkedin"`
	Portfolio string `json:"portfolio"`
}

// WorkExperience is a single position in the work history.
type WorkExperience struct {
	Role             string   `json:"role"`
	Company          string   `json:"company"`
	Period           string   `json:"period"`
	Location         string   `json:"location"`
	Responsibilities []string `json:"responsibilities"`
}

// Education is a single education entry.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Project is a single project entry.
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CVData is the canonical CV document. Every field is always present with its
// declared shape; slices are never nil after passing through Normalize or
// Sanitized. JSON field names match the wire format used by the extraction
// and translation services.
type CVData struct {
	Name           string           `json:"name"`
	Title          string           `json:"title"`
	Contact        Contact          `json:"contact"`
	Profile        string           `json:"profile"`
	Skills         []string         `json:"skills"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Education      []Education      `json:"education"`
	Projects       []Project        `json:"projects"`
	Languages      []string         `json:"languages"`
	Interests      []string         `json:"interests"`
}

// Clone returns a deep copy of the document. Snapshot immutability in the
// store and the translation orchestrator depends on it.
func (d CVData) Clone() CVData {
	out := d
	out.Skills = cloneStrings(d.Skills)
	out.Languages = cloneStrings(d.Languages)
	out.Interests = cloneStrings(d.Interests)

	if d.WorkExperience != nil {
		out.WorkExperience = make([]WorkExperience, len(d.WorkExperience))
		for i, w := range d.WorkExperience {
			w.Responsibilities = cloneStrings(w.Responsibilities)
			out.WorkExperience[i] = w
		}
	}

	if d.Education != nil {
		out.Education = make([]Education, len(d.Education))
		copy(out.Education, d.Education)
	}

	if d.Projects != nil {
		out.Projects = make([]Project, len(d.Projects))
		copy(out.Projects, d.Projects)
	}

	return out
}

// cloneStrings copies a string slice, preserving nil-ness.
func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
