package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"feedsift/app/store"
)

// Handler serves the filtered feeds. It only ever takes read access on the
// feed store; all writes belong to the poller.
type Handler struct {
	store     *store.FeedStore
	generator *Generator
	version   string
}

func NewHandler(feedStore *store.FeedStore, version string) *Handler {
	return &Handler{
		store:     feedStore,
		generator: NewGenerator(version),
		version:   version,
	}
}

// ListFeeds renders a plain-text index of the available feeds.
func (h *Handler) ListFeeds(c *gin.Context) {
	summaries := h.store.ListNames()

	if len(summaries) == 0 {
		c.String(http.StatusOK, "No feeds available yet\n")
		return
	}

	var b strings.Builder
	b.WriteString("Available feeds:\n")
	for _, summary := range summaries {
		fmt.Fprintf(&b, "- /feeds/%s (%d items)\n", summary.Name, summary.ItemCount)
	}

	c.String(http.StatusOK, b.String())
}

// GetFeed renders one stored feed as RSS XML.
func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")

	title, description, items, ok := h.store.Read(name)
	if !ok {
		c.String(http.StatusNotFound, "Feed not found")
		return
	}

	selfLink := fmt.Sprintf("http://%s/feeds/%s", c.Request.Host, name)
	rss := h.generator.Run(title, description, selfLink, items)

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, rss)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	summaries := h.store.ListNames()

	feeds := make(map[string]int, len(summaries))
	total := 0
	for _, summary := range summaries {
		feeds[summary.Name] = summary.ItemCount
		total += summary.ItemCount
	}

	c.JSON(http.StatusOK, gin.H{
		"feed_count": len(summaries),
		"item_count": total,
		"feeds":      feeds,
	})
}
