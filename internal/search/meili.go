package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"github.com/tazhibayda/jobboard/internal/domain"
)

const jobsIndex = "jobs"

type jobDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Level       string `json:"level"`
	Visible     bool   `json:"visible"`
}

// Meili keeps a searchable copy of jobs in Meilisearch.
type Meili struct {
	client *meilisearch.Client
}

// NewMeili connects and makes sure the jobs index exists with its settings.
func NewMeili(host, apiKey string) (*Meili, error) {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	_, err := client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        jobsIndex,
		PrimaryKey: "id",
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	task, err := client.Index(jobsIndex).UpdateFilterableAttributes(&[]string{"visible", "category", "level"})
	if err != nil {
		return nil, fmt.Errorf("failed to update filterable attributes: %w", err)
	}
	if _, err = client.WaitForTask(task.TaskUID); err != nil {
		return nil, fmt.Errorf("failed to wait for filterable attributes update: %w", err)
	}

	task, err = client.Index(jobsIndex).UpdateSearchableAttributes(&[]string{
		"title",
		"category",
		"location",
		"level",
		"description",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update searchable attributes: %w", err)
	}
	if _, err = client.WaitForTask(task.TaskUID); err != nil {
		return nil, fmt.Errorf("failed to wait for searchable attributes update: %w", err)
	}
	return &Meili{client: client}, nil
}

// IndexJob adds or replaces the job's document. Indexing is asynchronous on
// the Meilisearch side.
func (m *Meili) IndexJob(_ context.Context, j domain.Job) error {
	docs := []jobDoc{{
		ID:          j.ID.Hex(),
		Title:       j.Title,
		Description: j.Description,
		Location:    j.Location,
		Category:    j.Category,
		Level:       j.Level,
		Visible:     j.Visible,
	}}
	_, err := m.client.Index(jobsIndex).AddDocuments(docs, "id")
	return err
}

// SearchJobIDs returns ids of visible jobs matching q, best match first.
func (m *Meili) SearchJobIDs(_ context.Context, q string, limit int) ([]string, error) {
	res, err := m.client.Index(jobsIndex).Search(q, &meilisearch.SearchRequest{
		Filter:               "visible = true",
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		doc, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		if id, ok := doc["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
