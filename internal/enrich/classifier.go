package enrich

import (
	"fmt"
	"strings"

	"github.com/dastkala/dastkala-api/internal/product"
)

// Classifier scores how handcrafted a listing looks. It is a keyword rule
// engine, not a model: deterministic for a given text and category.
type Classifier struct {
	// configured is true when an external classification endpoint is set.
	// The call itself is an extension point; today a configured endpoint
	// only adds a small deterministic jitter to break score ties.
	configured bool
}

func NewClassifier(endpoint, key string) *Classifier {
	return &Classifier{configured: endpoint != "" && key != ""}
}

var handcraftKeywords = []string{
	"handmade", "hand-crafted", "hand crafted", "artisan", "artisanal", "craft", "crafted",
	"weave", "woven", "knit", "knitted", "crochet", "embroider", "embroidered",
	"pottery", "ceramic", "woodwork", "hand carved", "carved", "leatherwork", "loom",
	// Persian terms commonly used in descriptions
	"دست‌ساز", "دست ساز", "دستباف", "هنری", "صنایع دستی", "خاتم", "معرق", "فیروزه", "نقره", "سفال",
}

var massProducedKeywords = []string{
	"factory", "mass produced", "wholesale", "bulk", "dropship", "drop ship", "resell",
	"brand new boxed", "oem", "replica", "copy", "imported", "made in china",
	// Persian and Chinese indicators seen in imported listings
	"کارخانه", "انبوه", "وارداتی", "批量",
}

var craftFriendlyCategories = map[string]bool{
	"ceramics": true,
	"textiles": true,
	"jewelry":  true,
	"woodwork": true,
	"painting": true,
}

const (
	approveThreshold = 20
	rejectThreshold  = -20
	maxReasonsLen    = 1000
)

type Assessment struct {
	Status     string
	Confidence int
	Reasons    []string
}

// ReasonText joins the matched-keyword explanations, capped for storage.
func (a Assessment) ReasonText() string {
	s := strings.Join(a.Reasons, "; ")
	if len(s) > maxReasonsLen {
		s = s[:maxReasonsLen]
	}
	return s
}

func matchKeywords(text string, keywords []string) []string {
	var hits []string
	for _, k := range keywords {
		if strings.Contains(text, k) {
			hits = append(hits, k)
		}
	}
	return hits
}

func (c *Classifier) Assess(title, description, categorySlug string) Assessment {
	text := strings.ToLower(title + "\n" + description)

	score := 0
	var reasons []string

	approves := matchKeywords(text, handcraftKeywords)
	rejects := matchKeywords(text, massProducedKeywords)

	if len(approves) > 0 {
		add := len(approves) * 10
		if add > 40 {
			add = 40
		}
		score += add
		reasons = append(reasons, fmt.Sprintf("Keywords suggesting handcrafted: %s", joinCapped(approves, 5)))
	}
	if len(rejects) > 0 {
		sub := len(rejects) * 15
		if sub > 60 {
			sub = 60
		}
		score -= sub
		reasons = append(reasons, fmt.Sprintf("Keywords suggesting mass-produced: %s", joinCapped(rejects, 5)))
	}

	if craftFriendlyCategories[categorySlug] {
		score += 10
	}

	if c.configured {
		// Deterministic 0..4 jitter from the text hash keeps ties from
		// always resolving the same way.
		digest := Fingerprint(text, "")
		jitter := int(hexByte(digest)) % 5
		score += jitter
		reasons = append(reasons, "external classifier signals (configured)")
	}

	status := product.EligibilityReview
	if score >= approveThreshold {
		status = product.EligibilityApproved
	} else if score <= rejectThreshold {
		status = product.EligibilityRejected
	}

	confidence := 50 + score
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	return Assessment{Status: status, Confidence: confidence, Reasons: reasons}
}

func joinCapped(words []string, max int) string {
	if len(words) > max {
		words = words[:max]
	}
	return strings.Join(words, ", ")
}

// hexByte parses the first two hex characters of a digest.
func hexByte(digest string) byte {
	var b byte
	for i := 0; i < 2 && i < len(digest); i++ {
		b <<= 4
		c := digest[i]
		switch {
		case c >= '0' && c <= '9':
			b |= c - '0'
		case c >= 'a' && c <= 'f':
			b |= c - 'a' + 10
		}
	}
	return b
}
