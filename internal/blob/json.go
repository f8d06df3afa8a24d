package blob

import (
	"context"
	"encoding/json"
	"fmt"
)

// PutJSON marshals v and stores it under kind/id.
func PutJSON(ctx context.Context, c StorageClient, kind Kind, id string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", kind, id, err)
	}
	return c.Put(ctx, kind, id, data)
}

// GetJSON loads kind/id into v.
func GetJSON(ctx context.Context, c StorageClient, kind Kind, id string, v any) error {
	data, err := c.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s/%s: %w", kind, id, err)
	}
	return nil
}
