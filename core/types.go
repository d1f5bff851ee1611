package core

import (
	"encoding/json"
	"fmt"
)

// Chunk is a heading-scoped unit of page text. Heading is empty for the
// single whole-page chunk produced when a page has no headings.
type Chunk struct {
	Heading string `json:"heading"`
	Text    string `json:"text"`
}

// PageContent is the payload handed to the summarizer.
type PageContent struct {
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Chunks []Chunk `json:"chunks"`
}

// Category selects the highlight style of an annotation.
type Category string

const (
	CategoryRedFlags   Category = "red_flags"
	CategoryThresholds Category = "thresholds"
	CategoryManagement Category = "management"
	CategoryLowValue   Category = "low_value"
)

// AnnotationItem is a passage to locate on the page and mark.
// ID must be unique within one annotation pass.
type AnnotationItem struct {
	Type Category `json:"type"`
	Text string   `json:"text"`
	ID   string   `json:"id"`
}

// Relevance is the tier of a heading summary.
type Relevance string

const (
	RelevanceHigh   Relevance = "High"
	RelevanceMedium Relevance = "Medium"
	RelevanceLow    Relevance = "Low"
)

// HeadingSummary is positionally aligned with the headings of the content root.
type HeadingSummary struct {
	Relevance      Relevance `json:"relevance"`
	OneLineSummary string    `json:"oneLineSummary"`
}

// Mode is the reading mode the summarizer is asked for.
type Mode string

const (
	ModeRedFlags    Mode = "red_flags"
	ModeManagement  Mode = "management"
	ModePrescribing Mode = "prescribing"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRedFlags, ModeManagement, ModePrescribing:
		return Mode(s), nil
	case "":
		return ModeRedFlags, nil
	}
	return "", fmt.Errorf("unknown mode %q (want red_flags, management or prescribing)", s)
}

// SummaryRequest is the body sent to the summarization service.
type SummaryRequest struct {
	Mode     Mode    `json:"mode"`
	SiteType string  `json:"siteType"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Chunks   []Chunk `json:"chunks"`
}

// Bullet is one summarized finding. Match, when set, is the page wording the
// finding was taken from and is preferred over Text for highlighting.
type Bullet struct {
	Text  string `json:"text"`
	Match string `json:"match,omitempty"`
}

// UnmarshalJSON accepts either a bare string or an object.
func (b *Bullet) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = Bullet{Text: s}
		return nil
	}
	type plain Bullet
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding bullet: %w", err)
	}
	*b = Bullet(p)
	return nil
}

// Snapshot is the structured summary returned for one page and mode.
type Snapshot struct {
	About             string   `json:"about"`
	RedFlags          []Bullet `json:"redFlags,omitempty"`
	HistoryAndExam    []Bullet `json:"historyAndExam,omitempty"`
	Investigations    []Bullet `json:"investigations,omitempty"`
	MedicalManagement []Bullet `json:"medicalManagement,omitempty"`
	Psychosocial      []Bullet `json:"psychosocial,omitempty"`
	Treatment         []Bullet `json:"treatment,omitempty"`
}

// Empty reports whether the snapshot carries nothing to show.
func (s *Snapshot) Empty() bool {
	return s == nil || (s.About == "" && len(s.RedFlags) == 0 && len(s.HistoryAndExam) == 0 &&
		len(s.Investigations) == 0 && len(s.MedicalManagement) == 0 &&
		len(s.Psychosocial) == 0 && len(s.Treatment) == 0)
}

// Report bundles everything a renderer needs for one annotated page.
type Report struct {
	Page       PageContent      `json:"page"`
	Mode       Mode             `json:"mode"`
	FetchedAt  string           `json:"fetchedAt,omitempty"`
	Snapshot   *Snapshot        `json:"snapshot,omitempty"`
	Highlights []AnnotationItem `json:"highlights,omitempty"`
	AppliedIDs []string         `json:"appliedIds"`
	// HTML is the full annotated document.
	HTML string `json:"-"`
	// RootHTML is the annotated content root only.
	RootHTML string `json:"-"`
}

// Applied reports whether the marker id was placed on the page.
func (r *Report) Applied(id string) bool {
	for _, a := range r.AppliedIDs {
		if a == id {
			return true
		}
	}
	return false
}
