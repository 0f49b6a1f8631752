package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/internal/cms"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

// PageFetcher is the slice of the fetcher the scrapers consume.
type PageFetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

// Scraper holds the pure page→record functions. All state lives in the
// session below it; scraping the same page twice yields the same record.
type Scraper struct {
	fetch  PageFetcher
	urls   cms.URLs
	logger *zap.Logger
}

// New builds a Scraper over the fetcher and endpoint set.
func New(fetch PageFetcher, urls cms.URLs, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{fetch: fetch, urls: urls, logger: logger}
}

// detail fetches a page and requires its ewTable; a missing table is a
// parse failure the orchestrators treat as a skip.
func (s *Scraper) detail(ctx context.Context, pageURL string) (map[string]string, error) {
	doc, err := s.fetch.Document(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if doc.Find("table.ewTable").Length() == 0 {
		s.logger.Warn("detail table missing", zap.String("url", pageURL), zap.Int("page_len", len(doc.Text())))
		return nil, appErrors.Wrap(nil, appErrors.ErrParse.Code, appErrors.ErrParse.Status,
			"no ewTable at "+pageURL)
	}
	return detailFields(doc), nil
}

func (s *Scraper) list(ctx context.Context, pageURL, param string) ([]int, error) {
	doc, err := s.fetch.Document(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return idsFromList(doc, param), nil
}
