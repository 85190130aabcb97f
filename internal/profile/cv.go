package profile

import (
	"errors"
	"fmt"
	"strings"
)

// CVFormat selects the payload shape of the get_cv tool.
type CVFormat string

const (
	// CVFormatText is a pre-formatted multi-line document.
	CVFormatText CVFormat = "text"
	// CVFormatStructured is the nested personalInfo/experience/... object.
	CVFormatStructured CVFormat = "structured"
	// CVFormatEmployers is a flat object keyed by employer name.
	CVFormatEmployers CVFormat = "employers"
)

// ErrUnknownCVFormat is returned for a format outside the supported set.
var ErrUnknownCVFormat = errors.New("unknown CV format")

// ParseCVFormat validates a format name.
func ParseCVFormat(s string) (CVFormat, error) {
	switch f := CVFormat(s); f {
	case CVFormatText, CVFormatStructured, CVFormatEmployers:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCVFormat, s)
	}
}

// CV is the structured curriculum vitae.
type CV struct {
	PersonalInfo PersonalInfo `yaml:"personalInfo" json:"personalInfo"`
	Experience   []Employer   `yaml:"experience" json:"experience"`
	Education    []Education  `yaml:"education" json:"education"`
	Skills       Skills       `yaml:"skills" json:"skills"`
	Interests    []string     `yaml:"interests" json:"interests"`
	Mottos       []string     `yaml:"mottos" json:"mottos"`
}

// PersonalInfo is the CV header.
type PersonalInfo struct {
	Name     string `yaml:"name" json:"name"`
	Title    string `yaml:"title" json:"title"`
	Location string `yaml:"location" json:"location"`
	Summary  string `yaml:"summary" json:"summary"`
}

// Employer groups the roles held at one organisation.
type Employer struct {
	Employer string `yaml:"employer" json:"employer"`
	Roles    []Role `yaml:"roles" json:"roles"`
}

// Role is one position held at an employer.
type Role struct {
	Title      string   `yaml:"title" json:"title"`
	Period     string   `yaml:"period" json:"period"`
	Location   string   `yaml:"location" json:"location,omitempty"`
	Highlights []string `yaml:"highlights" json:"highlights,omitempty"`
	Skills     []string `yaml:"skills" json:"skills,omitempty"`
}

// Education is one degree, course or programme.
type Education struct {
	Institution string   `yaml:"institution" json:"institution"`
	Year        string   `yaml:"year" json:"year"`
	Degree      string   `yaml:"degree" json:"degree,omitempty"`
	Field       string   `yaml:"field" json:"field,omitempty"`
	Course      string   `yaml:"course" json:"course,omitempty"`
	Details     string   `yaml:"details" json:"details,omitempty"`
	Skills      []string `yaml:"skills" json:"skills,omitempty"`
}

// Skills splits skills into technical and soft.
type Skills struct {
	Technical []string `yaml:"technical" json:"technical"`
	Soft      []string `yaml:"soft" json:"soft"`
}

// ByEmployer returns the roles grouped under each employer name.
func (cv *CV) ByEmployer() map[string][]Role {
	out := make(map[string][]Role, len(cv.Experience))
	for _, e := range cv.Experience {
		out[e.Employer] = append(out[e.Employer], e.Roles...)
	}
	return out
}

// Text renders the CV as a plain multi-line document.
func (cv *CV) Text() string {
	var b strings.Builder

	pi := cv.PersonalInfo
	fmt.Fprintf(&b, "name: %s\n", pi.Name)
	fmt.Fprintf(&b, "title: %s\n", pi.Title)
	fmt.Fprintf(&b, "location: %s\n\n", pi.Location)
	fmt.Fprintf(&b, "summary: %s\n\n", pi.Summary)
	fmt.Fprintf(&b, "technical skills: %s\n", strings.Join(cv.Skills.Technical, ", "))
	fmt.Fprintf(&b, "soft skills: %s\n\n", strings.Join(cv.Skills.Soft, ", "))

	b.WriteString("experience:\n")
	for _, e := range cv.Experience {
		fmt.Fprintf(&b, "%s:\n", e.Employer)
		for _, r := range e.Roles {
			when := r.Period
			if r.Location != "" {
				when += ", " + r.Location
			}
			fmt.Fprintf(&b, "- %s (%s)\n", r.Title, when)
			for _, h := range r.Highlights {
				fmt.Fprintf(&b, "  • %s\n", h)
			}
			if len(r.Skills) > 0 {
				fmt.Fprintf(&b, "  • Skills: %s\n", strings.Join(r.Skills, ", "))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("education:\n")
	for _, ed := range cv.Education {
		fmt.Fprintf(&b, "- %s (%s)\n", ed.Institution, ed.Year)
		writeField(&b, "Degree", ed.Degree)
		writeField(&b, "Field", ed.Field)
		writeField(&b, "Course", ed.Course)
		writeField(&b, "Details", ed.Details)
		if len(ed.Skills) > 0 {
			writeField(&b, "Skills", strings.Join(ed.Skills, ", "))
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "interests: %s\n", strings.Join(cv.Interests, ", "))
	b.WriteString("mottos:\n")
	for _, m := range cv.Mottos {
		fmt.Fprintf(&b, "- %s\n", m)
	}
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  • %s: %s\n", label, value)
}

// Document returns the value to be JSON-encoded as the get_cv payload.
func (cv *CV) Document(format CVFormat) (interface{}, error) {
	switch format {
	case CVFormatText:
		return cv.Text(), nil
	case CVFormatStructured:
		return cv, nil
	case CVFormatEmployers:
		return cv.ByEmployer(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCVFormat, string(format))
	}
}
