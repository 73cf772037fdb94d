package catalog

import (
	"context"
	"fmt"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/util"
)

// maxSampleOffset bounds the random offset for subject sampling.
// Offsets land anywhere in [0, 500) so repeated calls surface variety.
const maxSampleOffset = 500

// SampleSubject fetches up to limit works for a subject at a random offset
// and returns normalized records in result order. Shares the derivation
// rules and error taxonomy with SearchByTitle: the two entry points only
// differ in the source endpoint and query shape.
func (c *Client) SampleSubject(ctx context.Context, subject string, limit int) ([]domain.BookRecord, error) {
	subject = util.NormalizeSubjectSlug(subject)
	if subject == "" {
		return nil, domainerrors.Validation("subject is required")
	}

	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	offset := c.offsetFn(maxSampleOffset)
	sampleURL := fmt.Sprintf("%s/subjects/%s.json?limit=%d&offset=%d", c.baseURL, subject, limit, offset)

	c.logger.Debug("sampling catalog subject",
		"subject", subject,
		"limit", limit,
		"offset", offset,
	)

	var resp subjectResponse
	err := c.attempt(ctx, func(ctx context.Context) error {
		resp = subjectResponse{}
		return c.getJSON(ctx, sampleURL, &resp)
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Works) == 0 {
		return nil, domainerrors.NotFoundf("no works found for subject %q", subject)
	}

	return normalizeWorks(resp.Works), nil
}
