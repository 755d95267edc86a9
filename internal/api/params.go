package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/forge-metrics/internal/domain"
)

// Query parameter defaults.
const (
	defaultRepositories = ".*"
	defaultInterval     = "3h"
	defaultSize         = 10
	dateLayout          = "2006-01-02"
)

// parseRepositories returns the repository regexp patterns of the request.
// Patterns are comma separated and default to matching everything; leading
// '^' anchors are stripped since patterns are implicitly anchored downstream.
func parseRepositories(c *gin.Context) []string {
	raw := c.Query("repositories")
	if raw == "" {
		raw = defaultRepositories
	}
	patterns := strings.Split(raw, ",")
	for i, p := range patterns {
		patterns[i] = strings.TrimLeft(p, "^")
	}
	return patterns
}

// parseQueryParams builds the metric params from the request's query string.
func parseQueryParams(c *gin.Context, maxPageSize int) (domain.QueryParams, error) {
	p := domain.QueryParams{
		EType:    domain.EventTypes(),
		Interval: defaultInterval,
		Size:     defaultSize,
	}

	var err error
	if p.Gte, err = parseDateMillis(c, "gte"); err != nil {
		return p, err
	}
	if p.Lte, err = parseDateMillis(c, "lte"); err != nil {
		return p, err
	}
	if p.OnCCGte, err = parseDateMillis(c, "on_cc_gte"); err != nil {
		return p, err
	}
	if p.OnCCLte, err = parseDateMillis(c, "on_cc_lte"); err != nil {
		return p, err
	}
	p.ECSameDate = c.Query("ec_same_date") == "true"

	if types := c.Query("type"); types != "" {
		p.EType = strings.Split(types, ",")
	}
	if authors := c.Query("authors"); authors != "" {
		p.Authors = strings.Split(authors, ",")
	}
	if excluded := c.Query("exclude_authors"); excluded != "" {
		p.ExcludeAuthors = strings.Split(excluded, ",")
	}
	if changeIDs := c.Query("change_ids"); changeIDs != "" {
		p.ChangeIDs = strings.Split(changeIDs, ",")
	}
	p.Approval = c.Query("approval")

	if interval := c.Query("interval"); interval != "" {
		p.Interval = interval
	}
	if size := c.Query("size"); size != "" {
		v, convErr := strconv.Atoi(size)
		if convErr != nil || v < 0 {
			return p, fmt.Errorf("invalid size %q", size)
		}
		p.Size = v
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	if from := c.Query("from"); from != "" {
		v, convErr := strconv.Atoi(from)
		if convErr != nil || v < 0 {
			return p, fmt.Errorf("invalid from %q", from)
		}
		p.From = v
	}
	return p, nil
}

// parseDateMillis parses a YYYY-MM-DD query value into epoch milliseconds at
// UTC midnight. A missing value yields nil.
func parseDateMillis(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date %q, expected YYYY-MM-DD", name, raw)
	}
	millis := t.UnixMilli()
	return &millis, nil
}
