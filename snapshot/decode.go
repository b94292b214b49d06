package snapshot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

var jsonAPI = sonic.ConfigStd

// ParseDeleteKeys recovers vendor_id and vendor_product_id from an outbox payload.
// Keys may be encoded as strings or numbers. Missing keys are returned empty; check DeleteKeys.Complete.
func ParseDeleteKeys(payload []byte) (DeleteKeys, error) {
	if len(payload) == 0 {
		return DeleteKeys{}, nil
	}

	var fields map[string]any
	if err := jsonAPI.Unmarshal(payload, &fields); err != nil {
		return DeleteKeys{}, fmt.Errorf("snapshot: decode payload: %w", err)
	}

	return DeleteKeys{
		VendorID:        scalarString(fields["vendor_id"]),
		VendorProductID: scalarString(fields["vendor_product_id"]),
	}, nil
}

// ParseIssues decodes a JSON array of data quality issues into a list of strings.
// Non-string elements are re-encoded as compact JSON so the result is always a primitive list.
func ParseIssues(raw []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var items []any
	if err := jsonAPI.UnmarshalFromString(trimmed, &items); err != nil {
		return nil, fmt.Errorf("snapshot: decode issues: %w", err)
	}

	issues := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			issues = append(issues, s)

			continue
		}
		encoded, err := jsonAPI.MarshalToString(item)
		if err != nil {
			return nil, fmt.Errorf("snapshot: encode issue: %w", err)
		}
		issues = append(issues, encoded)
	}

	return issues, nil
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
