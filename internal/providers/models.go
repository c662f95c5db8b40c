package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListModels fetches the provider's model catalog.
// Servers in the wild return either a bare JSON array or an OpenAI-style
// {"data": [...]} wrapper, with entries that are plain strings or objects
// carrying "id" or "name". All four shapes are accepted.
func (c *OpenAICompatClient) ListModels(ctx context.Context) ([]string, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}
	return parseModelList(body)
}

func parseModelList(body []byte) ([]string, error) {
	var entries []json.RawMessage

	// Bare array first, then the {data: [...]} wrapper.
	if err := json.Unmarshal(body, &entries); err != nil {
		var wrapper struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to parse model list: %w", err)
		}
		entries = wrapper.Data
	}

	models := make([]string, 0, len(entries))
	for _, raw := range entries {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				models = append(models, s)
			}
			continue
		}

		var obj struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			continue
		}
		switch {
		case obj.ID != "":
			models = append(models, obj.ID)
		case obj.Name != "":
			models = append(models, obj.Name)
		}
	}
	return models, nil
}
