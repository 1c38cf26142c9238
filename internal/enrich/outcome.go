package enrich

// Status classifies how a best-effort translation attempt resolved.
type Status int

const (
	// Translated means the text came from the external service or the cache.
	Translated Status = iota
	// Fallback means translation was deliberately skipped (unconfigured
	// provider, same locale, empty text, budget exhausted); the original
	// text is kept.
	Fallback
	// Failed means the external call was attempted and did not succeed; the
	// original text is kept.
	Failed
)

func (s Status) String() string {
	switch s {
	case Translated:
		return "translated"
	case Fallback:
		return "fallback"
	default:
		return "failed"
	}
}

// Outcome is the result of one Translate call. Text is always usable: on
// Fallback and Failed it carries the untranslated source.
type Outcome struct {
	Text   string
	Status Status
	Reason string
}
