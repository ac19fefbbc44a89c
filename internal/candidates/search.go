// Package candidates retrieves adoptable animals from the Elasticsearch
// listing index.
package candidates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "pawmatch-workers/internal/common/errors"
	"pawmatch-workers/internal/common/logger"
	"pawmatch-workers/internal/matching"

	"github.com/elastic/go-elasticsearch/v8"
)

const defaultLimit = 100

var ErrIndexNotFound = errors.New("INDEX_NOT_FOUND")

type Searcher struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

func NewSearcher(client *elasticsearch.Client, index string, log logger.Logger) *Searcher {
	return &Searcher{
		client: client,
		index:  index,
		log:    log.WithFields(map[string]interface{}{"component": "candidates", "index": index}),
	}
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
			Sort   []interface{}   `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs q against the index and decodes every hit into a candidate record.
func (s *Searcher) Search(ctx context.Context, q Query) ([]matching.CandidateRecord, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	body, err := json.Marshal(BuildSearchBody(q))
	if err != nil {
		return nil, apperrors.NewCandidateSearchFailedError(s.index, err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
		s.client.Search.WithSize(limit),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewSearchTimeoutError(s.index)
		}
		return nil, apperrors.NewCandidateSearchFailedError(s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return nil, apperrors.NewCandidateSearchFailedError(s.index, fmt.Errorf("%w: %s", ErrIndexNotFound, s.index))
		}
		return nil, apperrors.NewCandidateSearchFailedError(s.index, fmt.Errorf("search error: %s", res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewCandidateSearchFailedError(s.index, fmt.Errorf("decode response: %w", err))
	}

	geoSorted := q.Location != nil && q.RadiusMiles > 0
	out := make([]matching.CandidateRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		var c matching.CandidateRecord
		if err := json.Unmarshal(hit.Source, &c); err != nil {
			s.log.Warn("skipping malformed listing", map[string]interface{}{"id": hit.ID, "error": err})
			continue
		}
		if c.ID == "" {
			c.ID = hit.ID
		}
		if geoSorted && c.DistanceMiles == nil && len(hit.Sort) > 0 {
			if d, ok := hit.Sort[0].(float64); ok {
				c.DistanceMiles = &d
			}
		}
		out = append(out, c)
	}

	s.log.Debug("candidate search finished", map[string]interface{}{
		"hits":   len(out),
		"tookMs": parsed.Took,
	})
	return out, nil
}

// Fetch is Search for callers that must not fail: any retrieval error is
// logged and resolves to an empty candidate list.
func (s *Searcher) Fetch(ctx context.Context, q Query) []matching.CandidateRecord {
	found, err := s.Search(ctx, q)
	if err != nil {
		s.log.Warn("candidate retrieval failed, continuing with no candidates", map[string]interface{}{"error": err})
		return []matching.CandidateRecord{}
	}
	return found
}
