// Package summarize talks to the remote summarization service and turns its
// snapshots into annotation items for the page.
package summarize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/pagemark/core"
)

var (
	// ErrRateLimited is returned when the service answers 429.
	ErrRateLimited = errors.New("too many requests, try again in a minute")
	// ErrNoSnapshot is returned when the service answers without a snapshot.
	ErrNoSnapshot = errors.New("no summary returned")
)

// Site types understood by the service.
const (
	SiteGeneric = "generic"
	SiteNiceCKS = "nice_cks"
	SitePubMed  = "pubmed"
)

var (
	niceCKSPattern = regexp.MustCompile(`(?i)cks\.nice\.org\.uk`)
	pubMedPattern  = regexp.MustCompile(`(?i)pubmed|ncbi\.nlm\.nih\.gov`)
)

// DetectSiteType classifies a page URL for the service.
func DetectSiteType(url string) string {
	switch {
	case url == "":
		return SiteGeneric
	case niceCKSPattern.MatchString(url):
		return SiteNiceCKS
	case pubMedPattern.MatchString(url):
		return SitePubMed
	default:
		return SiteGeneric
	}
}

// NewRequest builds the service request for extracted page content.
func NewRequest(content core.PageContent, mode core.Mode) core.SummaryRequest {
	chunks := content.Chunks
	if chunks == nil {
		chunks = []core.Chunk{}
	}
	return core.SummaryRequest{
		Mode:     mode,
		SiteType: DetectSiteType(content.URL),
		Title:    content.Title,
		URL:      content.URL,
		Chunks:   chunks,
	}
}

// Section is one labelled list of bullets shown for a mode.
type Section struct {
	Label    string
	IDPrefix string
	Category core.Category
	Danger   bool
	Bullets  []core.Bullet
}

// Sections returns the bullet sections a mode displays, in display order.
func Sections(s *core.Snapshot, mode core.Mode) []Section {
	if s == nil {
		return nil
	}
	switch mode {
	case core.ModeRedFlags, "":
		return []Section{
			{Label: "Red flags", IDPrefix: "red", Category: core.CategoryRedFlags, Danger: true, Bullets: s.RedFlags},
			{Label: "History and exam", IDPrefix: "hist", Category: core.CategoryManagement, Bullets: s.HistoryAndExam},
		}
	case core.ModeManagement:
		return []Section{
			{Label: "Investigations", IDPrefix: "inv", Category: core.CategoryManagement, Bullets: s.Investigations},
			{Label: "Medical management", IDPrefix: "mgt", Category: core.CategoryManagement, Bullets: s.MedicalManagement},
			{Label: "Psychosocial / non-medical", IDPrefix: "psy", Category: core.CategoryManagement, Bullets: s.Psychosocial},
		}
	default:
		return []Section{
			{Label: "Rx", IDPrefix: "tx", Category: core.CategoryManagement, Bullets: s.Treatment},
		}
	}
}

// BulletID is the id shared by a panel bullet and its page marker.
func BulletID(prefix string, i int) string {
	return fmt.Sprintf("%s-%d", prefix, i)
}

// HighlightsFromSnapshot converts the bullets of a mode into annotation
// items. A bullet's match text is preferred over its display text; blank
// bullets are skipped but keep their index.
func HighlightsFromSnapshot(s *core.Snapshot, mode core.Mode) []core.AnnotationItem {
	var out []core.AnnotationItem
	for _, sec := range Sections(s, mode) {
		for i, b := range sec.Bullets {
			text := b.Match
			if strings.TrimSpace(text) == "" {
				text = b.Text
			}
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			out = append(out, core.AnnotationItem{
				Type: sec.Category,
				Text: text,
				ID:   BulletID(sec.IDPrefix, i),
			})
		}
	}
	return out
}
