package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"estate-metrics/internal/model"
)

// aggregateKeys are the array keys historical payloads have used to wrap the
// record list.
var aggregateKeys = []string{"results", "hits", "items", "properties", "listings"}

// ExtractRecords pulls the record list out of a raw JSON payload, probing the
// shapes the scraping pipeline has produced over time: a bare array, the
// nested page-props wrapper around a single property, an aggregate key, a
// "data" envelope, or a single object.
func ExtractRecords(data []byte) ([]Record, error) {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}

	switch val := decoded.(type) {
	case []interface{}:
		return toRecords(val), nil
	case map[string]interface{}:
		if records := extractFromObject(val); records != nil {
			return records, nil
		}
		return []Record{Record(val)}, nil
	default:
		return nil, fmt.Errorf("unsupported JSON payload shape %T", decoded)
	}
}

func extractFromObject(obj map[string]interface{}) []Record {
	// Scraper single-property wrapper: props.pageProps.propertyResult.property
	if props, ok := obj["props"].(map[string]interface{}); ok {
		if pageProps, ok := props["pageProps"].(map[string]interface{}); ok {
			if result, ok := pageProps["propertyResult"].(map[string]interface{}); ok {
				switch property := result["property"].(type) {
				case []interface{}:
					return toRecords(property)
				case map[string]interface{}:
					return []Record{Record(property)}
				}
			}
		}
	}

	if records := extractAggregate(obj); records != nil {
		return records
	}

	// Sometimes everything sits under "data".
	switch data := obj["data"].(type) {
	case []interface{}:
		return toRecords(data)
	case map[string]interface{}:
		if records := extractAggregate(data); records != nil {
			return records
		}
		switch property := data["property"].(type) {
		case []interface{}:
			return toRecords(property)
		case map[string]interface{}:
			return []Record{Record(property)}
		}
	}

	return nil
}

func extractAggregate(obj map[string]interface{}) []Record {
	for _, key := range aggregateKeys {
		arr, ok := obj[key].([]interface{})
		if !ok || len(arr) == 0 {
			continue
		}
		if _, ok := arr[0].(map[string]interface{}); ok {
			return toRecords(arr)
		}
	}
	return nil
}

func toRecords(items []interface{}) []Record {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			records = append(records, Record(obj))
		}
	}
	return records
}

// DetectTransactionKind infers rent/sell from a source file name or URL, as a
// fallback for records that do not state their kind. Empty when undecidable.
func DetectTransactionKind(source string) string {
	lower := strings.ToLower(source)
	switch {
	case strings.Contains(lower, "for_rent"), strings.Contains(lower, "_rent_"), strings.Contains(lower, "/rent_"):
		return model.TransactionRent
	case strings.Contains(lower, "for_sale"), strings.Contains(lower, "_sale_"), strings.Contains(lower, "/sale_"):
		return model.TransactionSell
	default:
		return ""
	}
}
