package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/dewvow/housepulse/internal/models"
)

func TestListingURL(t *testing.T) {
	tests := []struct {
		name     string
		record   models.SuburbRecord
		expected string
	}{
		{
			"single word",
			models.SuburbRecord{Suburb: "Richmond", State: models.VIC, Postcode: "3121"},
			"https://www.realestate.com.au/vic/richmond-3121/",
		},
		{
			"multi word lowercased",
			models.SuburbRecord{Suburb: "Surfers Paradise", State: models.QLD, Postcode: "4217"},
			"https://www.realestate.com.au/qld/surfers-paradise-4217/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ListingURL(tt.record))
		})
	}
}

func TestSendMessage_Disabled(t *testing.T) {
	s := NewService(Config{Enabled: false}, logrus.New())
	assert.NoError(t, s.SendMessage("hello"))
}

func TestSendMessage_MissingToken(t *testing.T) {
	s := NewService(Config{Enabled: true, ChatID: "42"}, logrus.New())
	assert.Error(t, s.SendMessage("hello"))
}

func TestSendMessage_PostsPayload(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/bottoken123/sendMessage")
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewService(Config{Enabled: true, BotToken: "token123", ChatID: "42"}, logrus.New())
	s.apiURL = server.URL

	assert.NoError(t, s.SendMessage("hello"))
	assert.Equal(t, "42", received["chat_id"])
	assert.Equal(t, "hello", received["text"])
	assert.Equal(t, "HTML", received["parse_mode"])
}

func TestSendMessage_APIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"unauthorized", http.StatusUnauthorized},
		{"bad request", http.StatusBadRequest},
		{"forbidden", http.StatusForbidden},
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			s := NewService(Config{Enabled: true, BotToken: "token", ChatID: "42"}, logrus.New())
			s.apiURL = server.URL
			assert.Error(t, s.SendMessage("hello"))
		})
	}
}

func TestNotifySuburbSaved_BelowThresholdSkipped(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewService(Config{Enabled: true, BotToken: "token", ChatID: "42", MinYield: 5.0}, logrus.New())
	s.apiURL = server.URL

	record := models.SuburbRecord{
		Suburb: "Bondi", State: models.NSW, Postcode: "2026",
		House: models.PropertyTypeData{
			Bedrooms: models.EmptyBedroomData(),
			Yield:    map[models.BedroomBucket]float64{models.ThreeBed: 3.12},
		},
		Unit: models.EmptyPropertyData(),
	}

	assert.NoError(t, s.NotifySuburbSaved(record))
	assert.False(t, called)
}

func TestNotifySuburbSaved_SendsAboveThreshold(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewService(Config{Enabled: true, BotToken: "token", ChatID: "42", MinYield: 5.0}, logrus.New())
	s.apiURL = server.URL

	record := models.SuburbRecord{
		Suburb: "Cairns", State: models.QLD, Postcode: "4870",
		House: models.PropertyTypeData{
			Bedrooms: models.EmptyBedroomData(),
			Yield:    map[models.BedroomBucket]float64{models.ThreeBed: 6.01},
		},
		Unit: models.EmptyPropertyData(),
	}

	assert.NoError(t, s.NotifySuburbSaved(record))
	text, _ := received["text"].(string)
	assert.Contains(t, text, "Cairns")
	assert.Contains(t, text, "Queensland")
	assert.Contains(t, text, "6.01")
	assert.Contains(t, text, "realestate.com.au/qld/cairns-4870/")
}
