package enrich

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/dastkala/dastkala-api/internal/product"
)

type fakeProduct struct {
	title        string
	description  string
	categorySlug string
}

type fakeStore struct {
	mu       sync.Mutex
	products map[string]fakeProduct

	translations map[string]struct{ title, description, hash string } // by product id
	eligibility  map[string]struct {
		status     string
		confidence int
		reasons    string
	}
	failUpsert bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:     make(map[string]fakeProduct),
		translations: make(map[string]struct{ title, description, hash string }),
		eligibility: make(map[string]struct {
			status     string
			confidence int
			reasons    string
		}),
	}
}

func (s *fakeStore) GetText(ctx context.Context, id string) (string, string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return "", "", "", fmt.Errorf("product not found")
	}
	return p.title, p.description, p.categorySlug, nil
}

func (s *fakeStore) UpsertTranslation(ctx context.Context, productID, locale, title, description, sourceHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpsert {
		return fmt.Errorf("connection reset")
	}
	s.translations[productID] = struct{ title, description, hash string }{title, description, sourceHash}
	return nil
}

func (s *fakeStore) SetEligibility(ctx context.Context, id, status string, confidence int, reasons string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eligibility[id] = struct {
		status     string
		confidence int
		reasons    string
	}{status, confidence, reasons}
	return nil
}

// runPipeline enqueues the work and drains the queue before returning.
func runPipeline(p *Pipeline, tasks ...Task) {
	p.Start(1)
	for _, t := range tasks {
		p.Enqueue(t)
	}
	p.Close()
}

func TestPipeline_TranslateTask_UpsertsTranslation(t *testing.T) {
	srv, calls := newTranslatorServer(t, func(string) string { return "translated" })
	defer srv.Close()

	store := newFakeStore()
	store.products["p1"] = fakeProduct{title: "گلدان سفالی", description: "سفال دست‌ساز"}

	p := NewPipeline(store,
		NewTranslator(srv.URL, "key", "", NewMemoryCache(10), nil),
		NewClassifier("", ""), 8)
	runPipeline(p, Task{ProductID: "p1", Kind: KindTranslate, Fingerprint: Fingerprint("گلدان سفالی", "سفال دست‌ساز")})

	got, ok := store.translations["p1"]
	if !ok {
		t.Fatalf("translation row missing")
	}
	if got.title != "translated" || got.description != "translated" {
		t.Fatalf("stored=%+v", got)
	}
	if got.hash != Fingerprint("گلدان سفالی", "سفال دست‌ساز") {
		t.Fatalf("hash=%s, expected fingerprint of the worker's own read", got.hash)
	}
	if *calls != 2 { // title + description
		t.Fatalf("calls=%d, expected 2", *calls)
	}
}

func TestPipeline_TranslateTask_UnconfiguredLeavesNoRow(t *testing.T) {
	store := newFakeStore()
	store.products["p1"] = fakeProduct{title: "گلدان", description: "سفال"}

	p := NewPipeline(store,
		NewTranslator("", "", "", NewMemoryCache(10), nil),
		NewClassifier("", ""), 8)
	runPipeline(p, Task{ProductID: "p1", Kind: KindTranslate})

	if len(store.translations) != 0 {
		t.Fatalf("no translation row expected when nothing was translated, got %v", store.translations)
	}
}

func TestPipeline_ClassifyTask_SetsEligibility(t *testing.T) {
	store := newFakeStore()
	store.products["p1"] = fakeProduct{title: "Handmade vase", description: "artisan pottery, hand carved"}

	p := NewPipeline(store, NewTranslator("", "", "", nil, nil), NewClassifier("", ""), 8)
	runPipeline(p, Task{ProductID: "p1", Kind: KindClassify})

	got, ok := store.eligibility["p1"]
	if !ok {
		t.Fatalf("eligibility not written")
	}
	if got.status != product.EligibilityApproved || got.confidence <= 50 {
		t.Fatalf("eligibility=%+v", got)
	}
	if got.reasons == "" {
		t.Fatalf("reasons should be recorded")
	}
}

// A store failure is logged and absorbed; the pipeline keeps running.
func TestPipeline_StoreFailure_IsAbsorbed(t *testing.T) {
	srv, _ := newTranslatorServer(t, func(string) string { return "x" })
	defer srv.Close()

	store := newFakeStore()
	store.products["p1"] = fakeProduct{title: "گلدان", description: ""}
	store.products["p2"] = fakeProduct{title: "Handmade vase", description: "artisan pottery, carved"}
	store.failUpsert = true

	p := NewPipeline(store,
		NewTranslator(srv.URL, "key", "", NewMemoryCache(10), nil),
		NewClassifier("", ""), 8)
	runPipeline(p,
		Task{ProductID: "p1", Kind: KindTranslate},
		Task{ProductID: "p2", Kind: KindClassify})

	if _, ok := store.eligibility["p2"]; !ok {
		t.Fatalf("later task must still run after an earlier failure")
	}
}

func TestPipeline_MissingProduct_IsAbsorbed(t *testing.T) {
	p := NewPipeline(newFakeStore(), NewTranslator("", "", "", nil, nil), NewClassifier("", ""), 8)
	runPipeline(p, Task{ProductID: "ghost", Kind: KindClassify})
	// nothing to assert beyond "did not panic"
}

func TestPipeline_EnqueueNeverBlocks(t *testing.T) {
	// queue of one, no workers started: the second enqueue must drop
	p := NewPipeline(newFakeStore(), NewTranslator("", "", "", nil, nil), NewClassifier("", ""), 1)

	if !p.Enqueue(Task{ProductID: "a", Kind: KindClassify}) {
		t.Fatalf("first enqueue should be accepted")
	}
	if p.Enqueue(Task{ProductID: "b", Kind: KindClassify}) {
		t.Fatalf("second enqueue should be dropped, not block")
	}
}

func TestProductChanged_PersianTriggersTranslation(t *testing.T) {
	p := NewPipeline(newFakeStore(), NewTranslator("", "", "", nil, nil), NewClassifier("", ""), 8)

	p.ProductChanged("p1", "گلدان سفالی", "hand made pot", "ceramics")
	p.ProductChanged("p2", "English title", "english description", "ceramics")

	var kinds []Kind
	for len(p.tasks) > 0 {
		kinds = append(kinds, (<-p.tasks).Kind)
	}
	want := []Kind{KindTranslate, KindClassify, KindClassify}
	if len(kinds) != len(want) {
		t.Fatalf("kinds=%v, expected %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds=%v, expected %v", kinds, want)
		}
	}
}

func TestHasPersian(t *testing.T) {
	if !HasPersian("گلدان") {
		t.Fatalf("expected Persian detection")
	}
	if HasPersian("plain english, even with accents: café") {
		t.Fatalf("unexpected Persian detection")
	}
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	a := Fingerprint("title", "desc")
	b := Fingerprint("title", "desc")
	c := Fingerprint("title", "desc2")
	if a != b {
		t.Fatalf("fingerprint must be stable")
	}
	if a == c {
		t.Fatalf("fingerprint must change with content")
	}
}
