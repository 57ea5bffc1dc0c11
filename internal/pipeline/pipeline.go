// Package pipeline drives one browser session through a list of identities:
// it fetches each listing page, follows detail links, and writes results so
// that a later run skips identities whose output is already complete.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"clustrmaps-go-crawler/internal/classifier"
	"clustrmaps-go-crawler/internal/crawler"
	"clustrmaps-go-crawler/internal/models"
	"clustrmaps-go-crawler/internal/pacing"
	"clustrmaps-go-crawler/internal/parser"
	"clustrmaps-go-crawler/internal/report"
	"clustrmaps-go-crawler/internal/store"
	"clustrmaps-go-crawler/pkg/logger"
)

const DefaultScreenshotPath = "error.png"

type Options struct {
	Session    *crawler.Session
	Store      *store.Store
	Pacer      *pacing.Controller
	Classifier *classifier.Classifier
	Log        *logger.Logger
	// host of the people-search site, without scheme
	Site string
	// where the browser state is captured on a fatal error
	ScreenshotPath string
	RunID          string
}

type Pipeline struct {
	session    *crawler.Session
	store      *store.Store
	pacer      *pacing.Controller
	parser     *parser.Parser
	classifier *classifier.Classifier
	log        *logger.Logger
	site       string
	screenshot string
	runID      string
}

func New(opts Options) *Pipeline {
	p := &Pipeline{
		session:    opts.Session,
		store:      opts.Store,
		pacer:      opts.Pacer,
		classifier: opts.Classifier,
		log:        opts.Log,
		site:       opts.Site,
		screenshot: opts.ScreenshotPath,
		runID:      opts.RunID,
	}
	if p.site == "" {
		p.site = DefaultSite
	}
	if p.pacer == nil {
		p.pacer = pacing.New(pacing.DefaultConfig())
	}
	if p.classifier == nil {
		p.classifier = classifier.New()
	}
	if p.screenshot == "" {
		p.screenshot = DefaultScreenshotPath
	}
	p.parser = parser.New("https://" + p.site)
	return p
}

// FatalError ends a run: the browser could not load a page.
type FatalError struct {
	Identity models.Identity
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.Identity, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

func MainTableName(id models.Identity) string { return "results_" + id.Key() + "_main.csv" }

func QuickFactsTableName(id models.Identity) string {
	return "results_" + id.Key() + "_quickfacts.csv"
}

func ArchiveName(id models.Identity) string { return id.Key() + "_details.html" }

// Run processes identities in order. The session is released before Run
// returns, whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, ids []models.Identity) (*report.Summary, error) {
	summary := &report.Summary{RunID: p.runID}
	defer func() {
		if rerr := p.session.Release(); rerr != nil {
			p.log.Warnf("quit browser: %v", rerr)
		}
	}()

	for i, id := range ids {
		p.log.Infof("Processing %d/%d: %s", i+1, len(ids), id)

		entry, err := p.process(ctx, id)
		entry.Index = i + 1
		entry.Identity = id
		if err != nil {
			entry.Outcome = report.Failed
			entry.Err = err.Error()
			summary.Add(entry)
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			p.fail(ctx, err)
			return summary, &FatalError{Identity: id, Err: err}
		}
		summary.Add(entry)

		// only a completed identity is paced; skipped and not-found ones move straight on
		if entry.Outcome != report.Done || i == len(ids)-1 {
			continue
		}
		if err := p.between(ctx, i, id); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// between paces the gap after the identity at index i and rotates the
// session when it is due.
func (p *Pipeline) between(ctx context.Context, i int, id models.Identity) error {
	if _, err := p.pacer.DelayBetweenIdentities(ctx); err != nil {
		return err
	}
	if !p.pacer.ShouldRestartSession(i) {
		return nil
	}
	err := p.session.Restart(ctx, func(ctx context.Context) error {
		_, err := p.pacer.DelayBeforeRestart(ctx)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.log.Errorf("Fatal error: %v", err)
		return &FatalError{Identity: id, Err: err}
	}
	return nil
}

func (p *Pipeline) process(ctx context.Context, id models.Identity) (report.Entry, error) {
	var entry report.Entry

	mainName, factsName := MainTableName(id), QuickFactsTableName(id)
	if p.store.Exists(mainName) && p.store.Exists(factsName) {
		p.log.Infof("All output files exist - skipping")
		entry.Outcome = report.Skipped
		return entry, nil
	}

	b, err := p.session.Start(ctx)
	if err != nil {
		return entry, err
	}

	entry.URL = BuildURL(p.site, id)
	title, markup, err := p.fetch(ctx, b, entry.URL)
	if err != nil {
		return entry, err
	}

	if class := p.classifier.Classify(title); class.NotFound() {
		p.log.Infof("No main profile found at %s", entry.URL)
		entry.Outcome = report.NotFound
		return entry, nil
	}

	doc, err := p.parser.DocumentString(markup)
	if err != nil {
		return entry, fmt.Errorf("parse listing %s: %w", entry.URL, err)
	}
	listings := p.parser.ExtractListing(doc)
	entry.Listings = len(listings)

	rows := make([]models.Record, len(listings))
	for i, l := range listings {
		rows[i] = l
	}
	// write faults are logged by the store and do not stop the run
	_ = p.store.WriteTable(mainName, models.MainColumns, rows...)

	var facts []models.Record
	for _, l := range listings {
		if !l.HasDetails() {
			continue
		}
		p.log.Infof("Fetching details page: %s", l.DetailsURL)
		_, page, err := p.fetch(ctx, b, l.DetailsURL)
		if err != nil {
			return entry, err
		}
		entry.Details++
		_ = p.store.AppendRawMarkup(ArchiveName(id), page)

		qf := p.quickFacts(page, l.DetailsURL)
		// the listing's name is authoritative, not the detail page heading
		qf.Name = l.Name
		facts = append(facts, qf)
	}

	if len(facts) > 0 {
		_ = p.store.WriteTable(factsName, models.QuickFactsColumns, facts...)
	}
	entry.Outcome = report.Done
	return entry, nil
}

func (p *Pipeline) quickFacts(markup, sourceURL string) models.QuickFacts {
	doc, err := p.parser.DocumentString(markup)
	if err != nil {
		p.log.Warnf("Error parsing details page %s: %v", sourceURL, err)
		doc = nil
	}
	qf, err := parser.ExtractQuickFacts(doc, sourceURL)
	if err != nil {
		p.log.Warnf("Error extracting quick facts: %v", err)
	}
	return qf
}

// fetch loads url, waits out the request delay and reads the page back.
func (p *Pipeline) fetch(ctx context.Context, b crawler.Browser, url string) (title, markup string, err error) {
	if err := b.Navigate(ctx, url); err != nil {
		return "", "", fmt.Errorf("navigate %s: %w", url, err)
	}
	if _, err := p.pacer.DelayBetweenRequests(ctx); err != nil {
		return "", "", err
	}
	if title, err = b.Title(ctx); err != nil {
		return "", "", fmt.Errorf("read title %s: %w", url, err)
	}
	if markup, err = b.PageMarkup(ctx); err != nil {
		return "", "", fmt.Errorf("read page %s: %w", url, err)
	}
	return title, markup, nil
}

// fail records the fatal error and captures what the browser was showing.
func (p *Pipeline) fail(ctx context.Context, cause error) {
	p.log.Errorf("Fatal error: %v", cause)
	b, err := p.session.Current()
	if err != nil {
		return
	}
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := b.Screenshot(shotCtx, p.screenshot); err != nil {
		p.log.Warnf("screenshot: %v", err)
		return
	}
	p.log.Infof("Saved screenshot to %s", p.screenshot)
}
