package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"dispodeals/models"
	"dispodeals/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) interface{} {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestValidateIngest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"valid minimal", `{"product_name":"Blue Dream"}`, ""},
		{"valid with price", `{"product_name":"Blue Dream","price":28}`, ""},
		{"zero price", `{"product_name":"X","price":0}`, ""},
		{"null price", `{"product_name":"X","price":null}`, ""},
		{"numeric string price", `{"product_name":"X","price":" 12.50 "}`, ""},
		{"blank string price", `{"product_name":"X","price":""}`, ""},
		{"boolean price", `{"product_name":"X","price":true}`, ""},
		{"single element array price", `{"product_name":"X","price":["5"]}`, ""},
		{"not an object", `"hello"`, "body must be object"},
		{"null body", `null`, "body must be object"},
		{"number body", `42`, "body must be object"},
		{"array body", `[1,2]`, "product_name required"},
		{"missing name", `{"price":5}`, "product_name required"},
		{"blank name", `{"product_name":"   "}`, "product_name required"},
		{"non-string name", `{"product_name":12}`, "product_name required"},
		{"negative price", `{"price":-1,"product_name":"X"}`, "price must be non-negative number"},
		{"text price", `{"product_name":"X","price":"cheap"}`, "price must be non-negative number"},
		{"object price", `{"product_name":"X","price":{}}`, "price must be non-negative number"},
		{"multi element array price", `{"product_name":"X","price":[1,2]}`, "price must be non-negative number"},
		{"NaN string price", `{"product_name":"X","price":"NaN"}`, "price must be non-negative number"},
		{"Infinity string price", `{"product_name":"X","price":"Infinity"}`, ""},
		{"negative Infinity string price", `{"product_name":"X","price":"-Infinity"}`, "price must be non-negative number"},
		{"lowercase inf string price", `{"product_name":"X","price":"inf"}`, "price must be non-negative number"},
		{"underscore digits string price", `{"product_name":"X","price":"1_000"}`, "price must be non-negative number"},
		{"hex string price", `{"product_name":"X","price":"0x10"}`, ""},
		{"octal and binary string prices", `{"product_name":"X","price":"0o17"}`, ""},
		{"signed hex string price", `{"product_name":"X","price":"-0x10"}`, "price must be non-negative number"},
		{"exponent string price", `{"product_name":"X","price":"1.5e2"}`, ""},
		{"trailing dot string price", `{"product_name":"X","price":"5."}`, ""},
		{"overflowing number price", `{"product_name":"X","price":1e400}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIngest(decode(t, tt.body))
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *models.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.want, vErr.Reason)
		})
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"28", 28, true},
		{".5", 0.5, true},
		{"+3", 3, true},
		{"1e3", 1000, true},
		{"0x10", 16, true},
		{"0XfF", 255, true},
		{"0o17", 15, true},
		{"0b101", 5, true},
		{"inf", 0, false},
		{"1_000", 0, false},
		{"0x", 0, false},
		{"0b102", 0, false},
		{"12abc", 0, false},
		{".", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseNumeric(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	inf, ok := parseNumeric("Infinity")
	assert.True(t, ok)
	assert.True(t, math.IsInf(inf, 1))
}

func TestIngestStoresDeal(t *testing.T) {
	repo := repository.NewMemoryDealRepository()
	svc := NewDealService(repo)

	resp, err := svc.Ingest(context.Background(), decode(t, `{
		"product_name": "  Blue Dream ",
		"price": 28,
		"dispensary_name": "Green Leaf",
		"weight": "3.5g",
		"thc": 24.1
	}`))
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "ddd-1", resp.DealID)
	assert.Equal(t, "Deal submitted", resp.Summary)
	assert.Empty(t, resp.Category)
	assert.Empty(t, resp.DealType)
	assert.Nil(t, resp.QuickScore)

	stored := repo.All()
	require.Len(t, stored, 1)
	assert.Equal(t, "Blue Dream", stored[0].ProductName)
	assert.Equal(t, "28", stored[0].Price)
	assert.Equal(t, "24.1", stored[0].THC)
	assert.Equal(t, "Green Leaf", stored[0].DispensaryName)
	assert.Equal(t, models.DealSourceManual, stored[0].Source)
	assert.NotEmpty(t, stored[0].DetectedAt)
}

func TestIngestRejectsWithoutPersisting(t *testing.T) {
	repo := repository.NewMemoryDealRepository()
	svc := NewDealService(repo)

	_, err := svc.Ingest(context.Background(), decode(t, `{"product_name":"X","price":-1}`))
	require.Error(t, err)
	assert.Equal(t, "price must be non-negative number", err.Error())

	n, _ := repo.Count(context.Background())
	assert.Zero(t, n)
}

func TestIngestEnrichmentOmittedFromJSON(t *testing.T) {
	svc := NewDealService(repository.NewMemoryDealRepository())
	resp, err := svc.Ingest(context.Background(), decode(t, `{"product_name":"X"}`))
	require.NoError(t, err)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"deal_id":"ddd-1","summary":"Deal submitted"}`, string(raw))
}

func strPtr(s string) *string { return &s }

func TestIngestBatch(t *testing.T) {
	repo := repository.NewMemoryDealRepository()
	svc := NewDealService(repo)

	payload := &models.ExtensionPayload{
		Source:     "weedmaps",
		PageURL:    "https://weedmaps.com/dispensaries/green-leaf",
		CapturedAt: "2026-03-01T12:30:00.000Z",
		Dispensary: models.DispensaryHint{NameGuess: strPtr("Green Leaf")},
		MenuItemsRaw: []models.RawMenuItem{
			{Name: "Blue Dream", PriceText: strPtr("$28"), Category: strPtr("flower")},
			{Name: "   "},
			{Name: "Gummies", PriceText: strPtr("$12.5")},
		},
	}

	resp, err := svc.IngestBatch(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.True(t, strings.HasPrefix(resp.IngestID, "ing_"))
	assert.Equal(t, 2, resp.Stored)
	assert.Nil(t, resp.Normalized)

	stored := repo.All()
	require.Len(t, stored, 2)
	assert.Equal(t, "28", stored[0].Price)
	assert.Equal(t, "flower", stored[0].Category)
	assert.Equal(t, "Green Leaf", stored[0].DispensaryName)
	assert.Equal(t, "2026-03-01T12:30:00.000Z", stored[0].DetectedAt)
	assert.Equal(t, models.DealSourceExtension, stored[1].Source)
}

func TestIngestBatchFallsBackToDeals(t *testing.T) {
	repo := repository.NewMemoryDealRepository()
	svc := NewDealService(repo)

	resp, err := svc.IngestBatch(context.Background(), &models.ExtensionPayload{
		MenuItemsRaw: []models.RawMenuItem{},
		DealsRaw: []models.RawDeal{
			{Title: "✅ Worth It Gelato", PriceText: strPtr("$45")},
			{Title: "⚠️ Mid Wedding Cake", ProductName: strPtr("Wedding Cake")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Stored)

	stored := repo.All()
	assert.Equal(t, "✅ Worth It Gelato", stored[0].ProductName)
	assert.Equal(t, "45", stored[0].Price)
	assert.Equal(t, "Wedding Cake", stored[1].ProductName)
}

func TestIngestBatchRequiresItems(t *testing.T) {
	svc := NewDealService(repository.NewMemoryDealRepository())

	_, err := svc.IngestBatch(context.Background(), &models.ExtensionPayload{Source: "dutchie"})
	var vErr *models.ValidationError
	require.True(t, errors.As(err, &vErr))

	_, err = svc.IngestBatch(context.Background(), nil)
	assert.Error(t, err)
}
