package ingest

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"estate-metrics/internal/model"
	"estate-metrics/pkg/utils"

	"gorm.io/datatypes"
)

// ErrMissingExternalID marks a record that cannot be identified. The import
// path skips such records and keeps going.
var ErrMissingExternalID = errors.New("record has no external id")

// fieldKeys is the single declarative mapping from a logical listing field to
// the ordered list of key names historical sources have used for it. Every
// adapter (JSON, CSV, XLSX, URL) funnels through this table; the first present
// non-empty key wins.
var fieldKeys = map[string][]string{
	"external_id": {"id", "property_id", "json_project_number", "matched_project_id", "project_number", "number"},
	"url":         {"url", "share_url", "link", "pf_url"},
	"title":       {"title", "project_name_en", "json_project_name", "matched_project_name", "project_name"},
	"address":     {"displayAddress", "display_address", "address", "location.full_name", "location", "area_name_en"},
	"bedrooms":    {"bedrooms", "rooms", "bedroom"},
	"bathrooms":   {"bathrooms", "bathroom"},
	"size":        {"sizeMin", "size", "area_sqm", "area_sqft", "procedure_area"},
	"currency":    {"priceCurrency", "currency"},
	"kind":        {"priceDuration", "price_duration", "transaction_kind"},
	"agent":       {"agent", "agent_name"},
	"agent_phone": {"agentPhone", "agent_phone"},
	"broker":      {"broker", "broker_name"},
	"license":     {"brokerLicenseNumber", "broker_license"},
	"type":        {"propertyType", "property_type"},
	"furnishing":  {"furnishing"},
	"verified":    {"verified"},
	"reference":   {"reference"},
	"rera":        {"rera", "rera_number"},
	"added_on":    {"addedOn", "added_on"},
	"description": {"description", "descriptionHTML", "description_html"},
}

// priceKeys are probed for the price amount; the rent-specific tail is only
// consulted for rent records.
var (
	priceKeysCommon = []string{"price", "actual_worth", "priceValue", "price_value", "amount", "value"}
	priceKeysRent   = []string{"rent", "rentValue", "rent_value", "annualRent", "yearly_rent", "yearlyRent", "price_year", "price_per_year"}
)

func probeString(rec Record, field string) string {
	for _, key := range fieldKeys[field] {
		if v := rec.stringAt(key); v != "" {
			return v
		}
	}
	return ""
}

func probeValue(rec Record, field string) interface{} {
	for _, key := range fieldKeys[field] {
		if v := rec.valueAt(key); v != nil && toString(v) != "" {
			return v
		}
	}
	for _, key := range fieldKeys[field] {
		if v := rec.valueAt(key); v != nil {
			return v
		}
	}
	return nil
}

// MapListing builds an unsaved listing entity from an input record. kindHint
// carries the rent/sell guess inferred from the source name and is only used
// when the record itself does not state a transaction kind.
func MapListing(rec Record, kindHint string) (*model.Listing, error) {
	externalID := probeString(rec, "external_id")
	if externalID == "" {
		return nil, ErrMissingExternalID
	}

	kind := strings.ToLower(probeString(rec, "kind"))
	if kind != model.TransactionSell && kind != model.TransactionRent {
		kind = kindHint
	}
	if kind != model.TransactionSell && kind != model.TransactionRent {
		kind = model.TransactionSell
	}

	listing := &model.Listing{
		ExternalID:      externalID,
		URL:             probeString(rec, "url"),
		Title:           probeString(rec, "title"),
		DisplayAddress:  probeString(rec, "address"),
		Bedrooms:        toInt(probeValue(rec, "bedrooms")),
		Bathrooms:       toInt(probeValue(rec, "bathrooms")),
		PriceCurrency:   probeString(rec, "currency"),
		TransactionKind: kind,
		Verified:        toBool(probeValue(rec, "verified")),
	}
	if listing.PriceCurrency == "" {
		listing.PriceCurrency = "AED"
	}

	listing.Price = extractPrice(rec, kind)
	applySize(listing, rec)
	applyCoordinates(listing, rec)
	applyOptionalStrings(listing, rec)
	applyAddedOn(listing, rec)
	applyJSONLists(listing, rec)

	SanitizeListing(listing)
	return listing, nil
}

func extractPrice(rec Record, kind string) *float64 {
	keys := priceKeysCommon
	if kind == model.TransactionRent {
		keys = append(append([]string{}, priceKeysCommon...), priceKeysRent...)
	}
	for _, key := range keys {
		if v := rec.valueAt(key); v != nil {
			if price := ParsePrice(v); price != nil {
				return price
			}
		}
	}
	return nil
}

var (
	priceTokens = []string{"aed", "د.إ", "per year", "per month", "/year", "/month", "yearly", "monthly", "yr", "mo"}
	numberRe    = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParsePrice normalizes raw price values, tolerating strings like
// "AED 80,000/year".
func ParsePrice(v interface{}) *float64 {
	if f := toFloat(v); f != nil {
		if *f < 0 {
			return nil
		}
		return f
	}

	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.ToLower(s)
	for _, token := range priceTokens {
		s = strings.ReplaceAll(s, token, " ")
	}
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, ",", "")

	match := numberRe.FindString(s)
	if match == "" {
		return nil
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &price
}

func applySize(listing *model.Listing, rec Record) {
	raw := probeValue(rec, "size")
	if raw == nil {
		return
	}
	s := toString(raw)
	match := numberRe.FindString(strings.ReplaceAll(s, ",", ""))
	if match == "" {
		return
	}
	size, err := strconv.ParseFloat(match, 64)
	if err != nil || size <= 0 {
		return
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "sqm") || strings.Contains(lower, "m²") || strings.Contains(lower, "м²") {
		listing.AreaSqm = &size
		return
	}
	listing.AreaSqft = &size
}

func applyCoordinates(listing *model.Listing, rec Record) {
	if coords, ok := rec["coordinates"].(map[string]interface{}); ok {
		listing.Latitude = toFloat(coords["latitude"])
		listing.Longitude = toFloat(coords["longitude"])
		return
	}
	listing.Latitude = toFloat(rec["latitude"])
	listing.Longitude = toFloat(rec["longitude"])
}

func applyOptionalStrings(listing *model.Listing, rec Record) {
	set := func(dst **string, field string) {
		if v := probeString(rec, field); v != "" {
			*dst = &v
		}
	}
	set(&listing.AgentName, "agent")
	set(&listing.AgentPhone, "agent_phone")
	set(&listing.BrokerName, "broker")
	set(&listing.BrokerLicense, "license")
	set(&listing.PropertyType, "type")
	set(&listing.Furnishing, "furnishing")
	set(&listing.Reference, "reference")
	set(&listing.ReraNumber, "rera")
	set(&listing.Description, "description")
}

var addedOnLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func applyAddedOn(listing *model.Listing, rec Record) {
	raw := probeValue(rec, "added_on")
	switch val := raw.(type) {
	case string:
		for _, layout := range addedOnLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(val)); err == nil {
				listing.AddedOn = &t
				return
			}
		}
	case float64:
		t := time.Unix(int64(val), 0).UTC()
		listing.AddedOn = &t
	}
}

func applyJSONLists(listing *model.Listing, rec Record) {
	if features, ok := rec["features"].([]interface{}); ok {
		if raw, err := json.Marshal(features); err == nil {
			listing.Features = datatypes.JSON(raw)
		}
	}
	if images, ok := rec["images"].([]interface{}); ok {
		if raw, err := json.Marshal(images); err == nil {
			listing.Images = datatypes.JSON(raw)
		}
	}
}

// SanitizeListing hard-truncates every length-limited column. Applied on both
// the create and update paths in case upstream validation was bypassed.
func SanitizeListing(listing *model.Listing) {
	listing.ExternalID = utils.Truncate(listing.ExternalID, model.MaxLenExternalID)
	listing.URL = utils.Truncate(listing.URL, model.MaxLenURL)
	listing.Title = utils.Truncate(listing.Title, model.MaxLenTitle)
	listing.PriceCurrency = utils.Truncate(listing.PriceCurrency, model.MaxLenCurrency)
	listing.AgentName = utils.TruncatePtr(listing.AgentName, model.MaxLenAgentName)
	listing.AgentPhone = utils.TruncatePtr(listing.AgentPhone, model.MaxLenAgentPhone)
	listing.BrokerName = utils.TruncatePtr(listing.BrokerName, model.MaxLenBrokerName)
	listing.BrokerLicense = utils.TruncatePtr(listing.BrokerLicense, model.MaxLenBrokerLicense)
	listing.PropertyType = utils.TruncatePtr(listing.PropertyType, model.MaxLenPropertyType)
	listing.Furnishing = utils.TruncatePtr(listing.Furnishing, model.MaxLenFurnishing)
	listing.Reference = utils.TruncatePtr(listing.Reference, model.MaxLenReference)
	listing.ReraNumber = utils.TruncatePtr(listing.ReraNumber, model.MaxLenReraNumber)
}
