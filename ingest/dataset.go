package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/stance"
)

const defaultDatasetBaseURL = "https://datasets-server.huggingface.co"

// DatasetStats counts a labeled-corpus fetch. Skipped records carried an
// unknown label or no text; they are logged and dropped, never fatal.
type DatasetStats struct {
	Fetched int
	Skipped int
}

// DatasetClient reads labeled tweet rows from the dataset hub's rows API
// and remaps the provider's {support, deny, neutral} taxonomy to stances.
type DatasetClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewDatasetClient creates a dataset hub client.
func NewDatasetClient(logger *zap.Logger) *DatasetClient {
	return &DatasetClient{
		baseURL:    defaultDatasetBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

type datasetRowsResponse struct {
	Rows []struct {
		Row json.RawMessage `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

type datasetRow struct {
	ID    json.Number `json:"id"`
	Text  string      `json:"text"`
	Label string      `json:"label"`
}

// FetchDataset pages through the named dataset subset and returns the
// remapped labeled corpus plus fetch statistics.
func (c *DatasetClient) FetchDataset(ctx context.Context, name, subset string) ([]stance.LabeledText, DatasetStats, error) {
	var stats DatasetStats
	var texts []stance.LabeledText

	const pageSize = 100
	for offset := 0; ; offset += pageSize {
		page, total, err := c.fetchPage(ctx, name, subset, offset, pageSize)
		if err != nil {
			return nil, stats, err
		}

		for _, raw := range page {
			record, err := c.toLabeledText(raw)
			if err != nil {
				stats.Skipped++
				var ingestionErr *stance.IngestionError
				if errors.As(err, &ingestionErr) {
					c.logger.Warn("skipping dataset record", zap.Error(err))
					continue
				}
				return nil, stats, err
			}
			stats.Fetched++
			texts = append(texts, record)
		}

		if offset+pageSize >= total || len(page) == 0 {
			break
		}
	}

	c.logger.Info("fetched labeled dataset",
		zap.String("dataset", name), zap.String("subset", subset),
		zap.Int("records", stats.Fetched), zap.Int("skipped", stats.Skipped))
	return texts, stats, nil
}

func (c *DatasetClient) fetchPage(ctx context.Context, name, subset string, offset, length int) ([]datasetRow, int, error) {
	query := url.Values{
		"dataset": {name},
		"config":  {subset},
		"split":   {"train"},
		"offset":  {strconv.Itoa(offset)},
		"length":  {strconv.Itoa(length)},
	}
	endpoint := fmt.Sprintf("%s/rows?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch dataset %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("fetch dataset %s: unexpected status %d", name, resp.StatusCode)
	}

	var payload datasetRowsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, 0, fmt.Errorf("decode dataset %s rows: %w", name, err)
	}

	rows := make([]datasetRow, 0, len(payload.Rows))
	for _, wrapper := range payload.Rows {
		var row datasetRow
		if err := json.Unmarshal(wrapper.Row, &row); err != nil {
			return nil, 0, fmt.Errorf("decode dataset %s row: %w", name, err)
		}
		rows = append(rows, row)
	}
	return rows, payload.NumRowsTotal, nil
}

// toLabeledText validates and remaps one raw row. Label and text problems
// come back as IngestionError so the caller skips and counts them.
func (c *DatasetClient) toLabeledText(row datasetRow) (stance.LabeledText, error) {
	id := row.ID.String()
	if row.Text == "" {
		return stance.LabeledText{}, &stance.IngestionError{RecordID: id, Reason: errors.New("empty text")}
	}
	label, err := stance.RemapLabel(row.Label)
	if err != nil {
		return stance.LabeledText{}, &stance.IngestionError{RecordID: id, Reason: err}
	}
	return stance.LabeledText{
		ID:        id,
		Text:      Clean(row.Text),
		Label:     label,
		Platform:  stance.PlatformTwitter,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MapRows converts pre-fetched raw rows, applying the same remapping and
// skip-and-count policy as FetchDataset. Used when the corpus comes from a
// local dump rather than the hub.
func MapRows(rows []RawLabeledRow, logger *zap.Logger) ([]stance.LabeledText, DatasetStats) {
	client := &DatasetClient{logger: logger}
	var stats DatasetStats
	var texts []stance.LabeledText
	for _, raw := range rows {
		record, err := client.toLabeledText(datasetRow{
			ID:    json.Number(raw.ID),
			Text:  raw.Text,
			Label: raw.Label,
		})
		if err != nil {
			stats.Skipped++
			logger.Warn("skipping labeled record", zap.Error(err))
			continue
		}
		stats.Fetched++
		texts = append(texts, record)
	}
	return texts, stats
}

// RawLabeledRow is one provider record before remapping.
type RawLabeledRow struct {
	ID    string
	Text  string
	Label string
}
