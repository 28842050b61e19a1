package search

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/foodbridge/services/donation/config"
	"example.com/foodbridge/services/donation/internal/models"
)

// ElasticClient provides integration with Elasticsearch
type ElasticClient struct {
	client *elasticsearch.Client
	config config.ElasticConfig
}

// DonationDocument is the indexed projection of a donation
type DonationDocument struct {
	ID        string   `json:"id"`
	DonorID   string   `json:"donor_id"`
	FoodName  string   `json:"food_name"`
	Category  string   `json:"category"`
	Quantity  string   `json:"quantity"`
	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"created_at"`
}

// NewElasticClient creates a new Elasticsearch client
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	esConfig := elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	}

	client, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{
		client: client,
		config: cfg,
	}, nil
}

// IndexDonation indexes a donation so it is discoverable via search
func (c *ElasticClient) IndexDonation(ctx context.Context, donation *models.Donation) error {
	log.Info().Str("donation_id", donation.ID.String()).Msg("indexing donation")

	doc := DonationDocument{
		ID:        donation.ID.String(),
		DonorID:   donation.DonorID,
		FoodName:  donation.FoodName,
		Category:  donation.Category,
		Quantity:  donation.Quantity,
		Location:  donation.Location,
		Latitude:  donation.Latitude,
		Longitude: donation.Longitude,
		Status:    string(donation.Status),
		CreatedAt: donation.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal donation document")
	}

	indexName := config.FormatIndex(c.config, c.config.Index)
	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(docJSON),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch index request")
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.Errorf("Elasticsearch returned an error indexing donation: %s", res.String())
	}

	return nil
}

// UpdateDonationStatus patches the indexed status after a lifecycle
// transition so claimed items stop showing up in search results
func (c *ElasticClient) UpdateDonationStatus(ctx context.Context, donationID string, status models.DonationStatus) error {
	body, err := json.Marshal(map[string]interface{}{
		"doc": map[string]interface{}{"status": string(status)},
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal status update")
	}

	indexName := config.FormatIndex(c.config, c.config.Index)
	req := esapi.UpdateRequest{
		Index:      indexName,
		DocumentID: donationID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch update request")
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.Errorf("Elasticsearch returned an error updating donation status: %s", res.String())
	}

	return nil
}

// SearchDonations runs a multi-match query over food name, category and
// location
func (c *ElasticClient) SearchDonations(ctx context.Context, query string) ([]DonationDocument, error) {
	searchBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"food_name^2", "category", "location"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"status": string(models.DonationStatusAvailable)},
				},
			},
		},
	}

	bodyJSON, err := json.Marshal(searchBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal search query")
	}

	indexName := config.FormatIndex(c.config, c.config.Index)
	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(indexName),
		c.client.Search.WithBody(bytes.NewReader(bodyJSON)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute Elasticsearch search request")
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.Errorf("Elasticsearch returned an error searching donations: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source DonationDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "failed to decode search response")
	}

	documents := make([]DonationDocument, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		documents = append(documents, hit.Source)
	}

	return documents, nil
}
