package news

import "time"

// Item is a single feed entry as it travels through the cleaning pipeline.
// Stages select and reorder items but never change their fields.
type Item struct {
	Title       string
	Link        string
	Source      string
	PublishedAt time.Time
	Query       string // search query that produced the item
}
