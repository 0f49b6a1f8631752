package cms

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/internal/cms/fetcher"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
	"github.com/limkokwing/registry-sync/pkg/metrics"
)

// SuccessMarker is the literal string the CMS embeds in a response body
// when a form submission was applied. The CMS answers 200 for both
// success and application failure, so this marker is the sole positive
// signal.
const SuccessMarker = "Successful"

// Pusher submits preserved form payloads and verifies acceptance.
type Pusher struct {
	fetcher *fetcher.Fetcher
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewPusher builds a Pusher over the shared fetcher.
func NewPusher(f *fetcher.Fetcher, logger *zap.Logger, m *metrics.Metrics) *Pusher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pusher{fetcher: f, logger: logger, metrics: m}
}

// PushForm posts the payload and checks for the success marker. On
// rejection the response body and payload are logged for diagnosis and
// the body is returned alongside ErrCMSRejected. There is no retry: the
// CMS may have partially applied the write.
func (p *Pusher) PushForm(ctx context.Context, pageURL string, payload url.Values) (string, error) {
	body, err := p.fetcher.PostForm(ctx, pageURL, payload)
	if err != nil {
		p.metrics.ObservePush("transport_error")
		return "", err
	}

	if !strings.Contains(body, SuccessMarker) {
		p.metrics.ObservePush("rejected")
		p.logger.Warn("CMS rejected form submission",
			zap.String("url", pageURL),
			zap.String("payload", payload.Encode()),
			zap.Int("body_len", len(body)))
		return body, appErrors.Wrap(nil, appErrors.ErrCMSRejected.Code, appErrors.ErrCMSRejected.Status,
			"no success marker in response from "+pageURL)
	}

	p.metrics.ObservePush("ok")
	return body, nil
}
