package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jimyoyo0329/socagent/indexstore"
	"github.com/jimyoyo0329/socagent/record"
)

type qdrantStore struct {
	options indexstore.Options
	client  *http.Client
}

func (s *qdrantStore) Add(ctx context.Context, entries []indexstore.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	points := make([]map[string]any, 0, len(entries))

	for _, e := range entries {
		payload := map[string]any{
			"doc_id":     e.Id,
			"document":   e.Document,
			"metadata":   e.Metadata,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		}

		points = append(points, map[string]any{
			"id":      uuid.New().String(),
			"vector":  e.Embedding,
			"payload": payload,
		})
	}

	req := map[string]any{
		"points": points,
	}

	var rsp qdrantEnvelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(s.options.Collection))

	if err := s.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

func (s *qdrantStore) Query(ctx context.Context, vector []float32, topK int, filter record.Filter) ([]indexstore.Result, error) {
	if topK < 1 {
		return nil, nil
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}

	if conditions := mustConditions(filter); len(conditions) > 0 {
		req["filter"] = map[string]any{"must": conditions}
	}

	var rsp qdrantEnvelope[[]qdrantPointResult]

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(s.options.Collection))

	if err := s.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, err
	}

	results := make([]indexstore.Result, 0, len(rsp.Result))

	for _, point := range rsp.Result {
		// qdrant reports cosine similarity, not distance
		results = append(results, indexstore.Result{
			Entry:    entryFromPayload(point.Payload),
			Distance: 1 - point.Score,
		})
	}

	return results, nil
}

func (s *qdrantStore) Get(ctx context.Context, filter record.Filter, limit int) ([]indexstore.Entry, error) {
	req := map[string]any{
		"with_payload": true,
	}

	if limit > 0 {
		req["limit"] = limit
	}

	if conditions := mustConditions(filter); len(conditions) > 0 {
		req["filter"] = map[string]any{"must": conditions}
	}

	var rsp qdrantEnvelope[qdrantScrollResult]

	path := fmt.Sprintf("/collections/%s/points/scroll", url.PathEscape(s.options.Collection))

	if err := s.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, err
	}

	entries := make([]indexstore.Entry, 0, len(rsp.Result.Points))

	for _, point := range rsp.Result.Points {
		entries = append(entries, entryFromPayload(point.Payload))
	}

	return entries, nil
}

func (s *qdrantStore) Count(ctx context.Context) (int, error) {
	req := map[string]any{
		"exact": true,
	}

	var rsp qdrantEnvelope[qdrantCountResult]

	path := fmt.Sprintf("/collections/%s/points/count", url.PathEscape(s.options.Collection))

	if err := s.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return 0, err
	}

	return rsp.Result.Count, nil
}

func mustConditions(filter record.Filter) []map[string]any {
	conditions := make([]map[string]any, 0, len(filter))
	for _, key := range filter.Keys() {
		conditions = append(conditions, map[string]any{
			"key":   "metadata." + key,
			"match": map[string]any{"value": filter[key]},
		})
	}
	return conditions
}

func entryFromPayload(payload map[string]any) indexstore.Entry {
	return indexstore.Entry{
		Id:       payloadString(payload, "doc_id"),
		Document: payloadString(payload, "document"),
		Metadata: payloadMetadata(payload, "metadata"),
	}
}

func (s *qdrantStore) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := s.options.Location + path

	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}

	httpReq.Header.Set("Content-Type", "application/json")

	httpRsp, err := s.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpRsp.Body.Close()

	body, err := io.ReadAll(httpRsp.Body)
	if err != nil {
		return err
	}

	if httpRsp.StatusCode >= 400 {
		return fmt.Errorf("qdrant %s %s: status %s: %s", method, path, httpRsp.Status, string(body))
	}

	return json.Unmarshal(body, rsp)
}

func NewStore(opts ...indexstore.Option) indexstore.IndexStore {
	options := indexstore.NewOptions(opts...)

	s := &qdrantStore{
		options: options,
		client:  &http.Client{Timeout: 30 * time.Second},
	}

	return s
}
