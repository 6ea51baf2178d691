package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dewvow/housepulse/internal/enrichment"
	"github.com/dewvow/housepulse/internal/export"
	"github.com/dewvow/housepulse/internal/filter"
	"github.com/dewvow/housepulse/internal/gazetteer"
	"github.com/dewvow/housepulse/internal/metrics"
	"github.com/dewvow/housepulse/internal/models"
	"github.com/dewvow/housepulse/internal/normalizer"
	"github.com/dewvow/housepulse/internal/notify"
	"github.com/dewvow/housepulse/internal/store"
)

type Handler struct {
	store      store.RecordStore
	normalizer *normalizer.Normalizer
	gaz        *gazetteer.Loader
	pool       *enrichment.Pool
	queue      *enrichment.JobQueue
	tracker    *enrichment.Tracker
	notifier   *notify.Service
	logger     *logrus.Logger
}

func NewHandler(
	recordStore store.RecordStore,
	norm *normalizer.Normalizer,
	gaz *gazetteer.Loader,
	pool *enrichment.Pool,
	queue *enrichment.JobQueue,
	tracker *enrichment.Tracker,
	notifier *notify.Service,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		store:      recordStore,
		normalizer: norm,
		gaz:        gaz,
		pool:       pool,
		queue:      queue,
		tracker:    tracker,
		notifier:   notifier,
		logger:     logger,
	}
}

// listQuery binds the filter and sort parameters of GET /api/suburbs.
// Comma-separated multi-value parameters keep bookmarkable URLs short.
type listQuery struct {
	States        string   `form:"states"`
	Bedrooms      string   `form:"bedrooms"`
	PropertyTypes string   `form:"propertyTypes"`
	MaxPrice      *float64 `form:"maxPrice"`
	MinYield      *float64 `form:"minYield"`
	HotOnly       bool     `form:"hotOnly"`
	SortBy        string   `form:"sortBy"`
	Direction     string   `form:"direction"`
}

func (q listQuery) criteria() models.FilterCriteria {
	c := models.FilterCriteria{
		MaxPrice: q.MaxPrice,
		MinYield: q.MinYield,
		HotOnly:  q.HotOnly,
	}
	for _, s := range splitParam(q.States) {
		c.States = append(c.States, models.StateCode(strings.ToUpper(s)))
	}
	for _, b := range splitParam(q.Bedrooms) {
		c.Bedrooms = append(c.Bedrooms, models.BedroomBucket(b))
	}
	for _, t := range splitParam(q.PropertyTypes) {
		c.PropertyTypes = append(c.PropertyTypes, models.PropertyType(strings.ToLower(t)))
	}
	return c
}

func splitParam(value string) []string {
	if value == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// GetSuburbs returns the stored records, filtered and sorted per the query.
func (h *Handler) GetSuburbs(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.WithError(err).Error("Failed to parse list query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	records, err := h.store.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list suburbs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list suburbs"})
		return
	}

	criteria := q.criteria()
	records = filter.Apply(records, criteria)

	if q.SortBy != "" {
		dir := filter.Direction(q.Direction)
		if dir != filter.Descending {
			dir = filter.Ascending
		}
		records = filter.Sort(records, criteria, filter.SortField(q.SortBy), dir)
	}

	c.JSON(http.StatusOK, records)
}

// SaveSuburb normalizes the posted payload and upserts the resulting record.
// New and updated records share this path; the record id is derived from the
// suburb identity, so a re-post of the same suburb overwrites in place.
func (h *Handler) SaveSuburb(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	record, err := h.normalizer.Normalize(raw, time.Now().UTC())
	if err != nil {
		var verr *normalizer.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to normalize suburb payload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process suburb"})
		return
	}

	if err := h.store.Upsert(record); err != nil {
		h.logger.WithError(err).Error("Failed to save suburb")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save suburb"})
		return
	}

	go func() {
		if err := h.notifier.NotifySuburbSaved(record); err != nil {
			h.logger.WithError(err).Warn("Failed to send save notification")
		}
	}()

	c.JSON(http.StatusOK, record)
}

// DeleteSuburb removes one record by id.
func (h *Handler) DeleteSuburb(c *gin.Context) {
	id := c.Param("id")

	_, found, err := h.store.Get(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load suburb")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete suburb"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Suburb not found"})
		return
	}

	if err := h.store.Remove(id); err != nil {
		h.logger.WithError(err).Error("Failed to delete suburb")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete suburb"})
		return
	}
	h.tracker.Forget(id)

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ClearSuburbs removes every stored record.
func (h *Handler) ClearSuburbs(c *gin.Context) {
	if err := h.store.Clear(); err != nil {
		h.logger.WithError(err).Error("Failed to clear suburbs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear suburbs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// ExportSuburbs streams the full dataset as a CSV download.
func (h *Handler) ExportSuburbs(c *gin.Context) {
	records, err := h.store.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list suburbs for export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export suburbs"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+export.Filename(time.Now().UTC()))

	if err := export.WriteCSV(c.Writer, records); err != nil {
		h.logger.WithError(err).Error("Failed to write CSV export")
	}
}

// GetHotSuburbs returns the hot-flagged records, optionally for one state.
func (h *Handler) GetHotSuburbs(c *gin.Context) {
	criteria := models.FilterCriteria{HotOnly: true}
	if state := c.Query("state"); state != "" {
		criteria.States = []models.StateCode{models.StateCode(strings.ToUpper(state))}
	}

	records, err := h.store.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list suburbs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list suburbs"})
		return
	}

	c.JSON(http.StatusOK, filter.Apply(records, criteria))
}

// GetSummary returns dataset-level statistics for the dashboard header.
func (h *Handler) GetSummary(c *gin.Context) {
	records, err := h.store.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list suburbs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to summarize suburbs"})
		return
	}

	hotCount := 0
	enrichedCount := 0
	pricedCount := 0
	yieldSum := 0.0
	byState := make(map[models.StateCode]int)

	for _, r := range records {
		byState[r.State]++
		if r.IsHot {
			hotCount++
		}
		if r.Demographics != nil {
			enrichedCount++
		}
		if best := metrics.BestYield(r); best > 0 {
			pricedCount++
			yieldSum += best
		}
	}

	averageYield := 0.0
	if pricedCount > 0 {
		averageYield = yieldSum / float64(pricedCount)
	}

	c.JSON(http.StatusOK, gin.H{
		"total":            len(records),
		"hotCount":         hotCount,
		"enrichedCount":    enrichedCount,
		"averageBestYield": averageYield,
		"byState":          byState,
	})
}

// EnrichSuburb queues a demographics backfill for one record.
func (h *Handler) EnrichSuburb(c *gin.Context) {
	id := c.Param("id")

	record, found, err := h.store.Get(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load suburb")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue enrichment"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Suburb not found"})
		return
	}

	err = h.queue.Push(enrichment.Job{
		RecordID: record.ID,
		Suburb:   record.Suburb,
		State:    string(record.State),
		Postcode: record.Postcode,
	})
	if errors.Is(err, enrichment.ErrQueueFull) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Enrichment queue is full, try again later"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to queue enrichment job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue enrichment"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// GetDemographics reports the demographics status and value for one record.
func (h *Handler) GetDemographics(c *gin.Context) {
	id := c.Param("id")

	record, found, err := h.store.Get(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load suburb")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load suburb"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Suburb not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       h.pool.StatusFor(record),
		"demographics": record.Demographics,
	})
}

// SearchGazetteer looks up localities by partial name or postcode prefix.
func (h *Handler) SearchGazetteer(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}

	state := models.StateCode(strings.ToUpper(c.Query("state")))
	c.JSON(http.StatusOK, h.gaz.Search(query, state))
}

// GetStates returns the supported states and territories.
func (h *Handler) GetStates(c *gin.Context) {
	c.JSON(http.StatusOK, models.AustralianStates)
}
