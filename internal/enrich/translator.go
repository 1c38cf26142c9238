package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Translator calls an Azure-Translator-shaped HTTP endpoint. Every failure
// path degrades to the original text; a caller can always use Outcome.Text.
type Translator struct {
	endpoint string
	key      string
	region   string
	http     *http.Client
	cache    Cache
	budget   *rate.Limiter
}

// NewDailyCharBudget builds a token bucket holding a coarse daily character
// quota: burst is the full day's allowance, refilled evenly over 24h.
// A non-positive limit disables the budget.
func NewDailyCharBudget(charsPerDay int) *rate.Limiter {
	if charsPerDay <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	perSecond := rate.Limit(float64(charsPerDay) / (24 * 60 * 60))
	return rate.NewLimiter(perSecond, charsPerDay)
}

func NewTranslator(endpoint, key, region string, cache Cache, budget *rate.Limiter) *Translator {
	return &Translator{
		endpoint: endpoint,
		key:      key,
		region:   region,
		http:     &http.Client{Timeout: 10 * time.Second},
		cache:    cache,
		budget:   budget,
	}
}

func cacheKey(from, to, fingerprint string) string {
	return from + ":" + to + ":" + fingerprint
}

// Translate returns the text in the target locale, or the original text with
// the reason it was kept. It never returns an error.
func (t *Translator) Translate(ctx context.Context, text, from, to string) Outcome {
	if text == "" || from == to {
		return Outcome{Text: text, Status: Fallback, Reason: "nothing to translate"}
	}

	key := cacheKey(from, to, Fingerprint(text, ""))
	if t.cache != nil {
		if cached, ok := t.cache.Get(ctx, key); ok {
			return Outcome{Text: cached, Status: Translated, Reason: "cache"}
		}
	}

	if t.endpoint == "" || t.key == "" {
		return Outcome{Text: text, Status: Fallback, Reason: "translator not configured"}
	}

	if t.budget != nil && !t.budget.AllowN(time.Now(), len(text)) {
		return Outcome{Text: text, Status: Fallback, Reason: "daily character budget exhausted"}
	}

	translated, err := t.call(ctx, text, from, to)
	if err != nil {
		return Outcome{Text: text, Status: Failed, Reason: err.Error()}
	}

	if t.cache != nil {
		t.cache.Set(ctx, key, translated)
	}
	return Outcome{Text: translated, Status: Translated}
}

type translateRequest struct {
	Text string `json:"Text"`
}

type translateResponse struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

func (t *Translator) call(ctx context.Context, text, from, to string) (string, error) {
	body, err := json.Marshal([]translateRequest{{Text: text}})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/translate?api-version=3.0&from=%s&to=%s", t.endpoint, from, to)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", t.key)
	if t.region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", t.region)
	}

	res, err := t.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translator returned %s", res.Status)
	}

	var out []translateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out) == 0 || len(out[0].Translations) == 0 {
		return "", fmt.Errorf("translator returned empty result")
	}
	return out[0].Translations[0].Text, nil
}
