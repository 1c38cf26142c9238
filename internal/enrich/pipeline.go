// Package enrich runs the best-effort product enrichment pipeline:
// machine translation of listing text and the handcrafted-eligibility
// classifier. Every attempt is fire-and-forget; a failure is logged and the
// product keeps its previous translation and eligibility until the next edit.
package enrich

import (
	"context"
	"log"
	"sync"
	"time"
)

type Kind string

const (
	KindTranslate Kind = "translate"
	KindClassify  Kind = "classify"
)

// Task is one enrichment attempt for one product.
type Task struct {
	ProductID   string
	Kind        Kind
	Fingerprint string
}

// Store is the slice of persistence the pipeline writes through.
type Store interface {
	GetText(ctx context.Context, id string) (title, description, categorySlug string, err error)
	UpsertTranslation(ctx context.Context, productID, locale, title, description, sourceHash string) error
	SetEligibility(ctx context.Context, id, status string, confidence int, reasons string) error
}

const (
	sourceLocale = "fa"
	targetLocale = "en"
)

type Pipeline struct {
	store      Store
	translator *Translator
	classifier *Classifier

	tasks       chan Task
	wg          sync.WaitGroup
	taskTimeout time.Duration
}

func NewPipeline(store Store, translator *Translator, classifier *Classifier, queueSize int) *Pipeline {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Pipeline{
		store:       store,
		translator:  translator,
		classifier:  classifier,
		tasks:       make(chan Task, queueSize),
		taskTimeout: 30 * time.Second,
	}
}

func (p *Pipeline) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for t := range p.tasks {
				p.process(t)
			}
		}()
	}
}

// Close stops accepting tasks and waits for in-flight ones to finish.
func (p *Pipeline) Close() {
	close(p.tasks)
	p.wg.Wait()
}

// Enqueue never blocks: a full queue drops the task. Enrichment is
// best-effort and the next product edit re-triggers it.
func (p *Pipeline) Enqueue(t Task) bool {
	select {
	case p.tasks <- t:
		return true
	default:
		log.Printf("[enrich] queue full, dropping %s task for product=%s", t.Kind, t.ProductID)
		return false
	}
}

// ProductChanged is the detached trigger called after a product create or
// update. Translation is only scheduled when the source text is in Persian
// script; classification always runs.
func (p *Pipeline) ProductChanged(productID, title, description, categorySlug string) {
	fp := Fingerprint(title, description)
	if HasPersian(title) || HasPersian(description) {
		p.Enqueue(Task{ProductID: productID, Kind: KindTranslate, Fingerprint: fp})
	}
	p.Enqueue(Task{ProductID: productID, Kind: KindClassify, Fingerprint: fp})
}

func (p *Pipeline) process(t Task) {
	ctx, cancel := context.WithTimeout(context.Background(), p.taskTimeout)
	defer cancel()

	var err error
	switch t.Kind {
	case KindTranslate:
		err = p.translate(ctx, t)
	case KindClassify:
		err = p.classify(ctx, t)
	}
	if err != nil {
		log.Printf("[enrich] %s failed for product=%s: %v", t.Kind, t.ProductID, err)
	}
}

// translate re-reads the product's current text and upserts the translation
// guarded by the fingerprint of its own read. Two rapid edits race as
// last-write-wins, which is acceptable for a best-effort pipeline.
func (p *Pipeline) translate(ctx context.Context, t Task) error {
	title, description, _, err := p.store.GetText(ctx, t.ProductID)
	if err != nil {
		return err
	}
	fp := Fingerprint(title, description)

	titleOut := p.translator.Translate(ctx, title, sourceLocale, targetLocale)
	descOut := p.translator.Translate(ctx, description, sourceLocale, targetLocale)

	if titleOut.Status != Translated && descOut.Status != Translated {
		// Nothing translated; keep whatever is stored. The next edit
		// re-triggers the attempt.
		log.Printf("[enrich] translation skipped for product=%s: title=%s(%s) description=%s(%s)",
			t.ProductID, titleOut.Status, titleOut.Reason, descOut.Status, descOut.Reason)
		return nil
	}

	return p.store.UpsertTranslation(ctx, t.ProductID, targetLocale, titleOut.Text, descOut.Text, fp)
}

func (p *Pipeline) classify(ctx context.Context, t Task) error {
	title, description, categorySlug, err := p.store.GetText(ctx, t.ProductID)
	if err != nil {
		return err
	}
	a := p.classifier.Assess(title, description, categorySlug)
	return p.store.SetEligibility(ctx, t.ProductID, a.Status, a.Confidence, a.ReasonText())
}
