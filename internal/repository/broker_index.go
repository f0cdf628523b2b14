// internal/repository/broker_index.go
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"broker-match-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const maxIndexedBrokers = 1000

// BrokerIndex reads broker profiles from an Elasticsearch index whose
// documents use the BrokerProfile JSON field names.
type BrokerIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewBrokerIndex(client *elasticsearch.Client, index string) *BrokerIndex {
	return &BrokerIndex{client: client, index: index}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.BrokerProfile `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func eligibleBrokersQuery() map[string]interface{} {
	return map[string]interface{}{
		"size": maxIndexedBrokers,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"isActive": true}},
					map[string]interface{}{"term": map[string]interface{}{"isVerified": true}},
				},
				"must_not": []interface{}{
					map[string]interface{}{"wildcard": map[string]interface{}{"email": map[string]interface{}{"value": "*test*", "case_insensitive": true}}},
					map[string]interface{}{"wildcard": map[string]interface{}{"email": map[string]interface{}{"value": "*demo*", "case_insensitive": true}}},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"id": "asc"},
		},
	}
}

func (i *BrokerIndex) ListEligibleBrokers(ctx context.Context) ([]models.BrokerProfile, error) {
	body, err := json.Marshal(eligibleBrokersQuery())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode hits: %v", ErrSearchFailed, err)
	}

	brokers := make([]models.BrokerProfile, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		// the index may lag behind deactivations
		if !hit.Source.Eligible() {
			continue
		}
		brokers = append(brokers, hit.Source)
	}
	return brokers, nil
}

// IndexBrokers writes the given profiles into the index, keyed by broker id.
func (i *BrokerIndex) IndexBrokers(ctx context.Context, brokers []models.BrokerProfile) error {
	for _, b := range brokers {
		doc, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode broker %s: %w", b.ID, err)
		}

		req := esapi.IndexRequest{
			Index:      i.index,
			DocumentID: b.ID,
			Body:       bytes.NewReader(doc),
		}
		res, err := req.Do(ctx, i.client)
		if err != nil {
			return fmt.Errorf("%w: index broker %s: %v", ErrSearchFailed, b.ID, err)
		}
		failed := res.IsError()
		status := res.String()
		res.Body.Close()
		if failed {
			return fmt.Errorf("%w: index broker %s: %s", ErrSearchFailed, b.ID, strings.TrimSpace(status))
		}
	}

	refresh := esapi.IndicesRefreshRequest{Index: []string{i.index}}
	res, err := refresh.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("%w: refresh: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()
	return nil
}
