package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/burdurhub-hq/burdur-news-hub/internal/state"
)

// scrapingStream serves the status projection as a Server-Sent-Events stream.
// It polls the store at a fixed interval, emits a frame only when progress
// changed or the run just completed, and closes once the run is finished or
// the attempt budget runs out.
func scrapingStream(store *state.Store, interval time.Duration, maxAttempts int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache, no-transform")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Writer.WriteHeaderNow()
		c.Writer.Flush()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		lastProgress := -1
		for attempts := 0; attempts < maxAttempts; {
			select {
			case <-c.Request.Context().Done():
				return
			case <-ticker.C:
				attempts++

				progress, completed, isScraping := store.Pulse()
				if progress != lastProgress || completed {
					payload, err := json.Marshal(store.Project())
					if err != nil {
						return
					}
					if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
						return
					}
					c.Writer.Flush()
					lastProgress = progress
				}

				if completed && !isScraping {
					return
				}
			}
		}
	}
}
