package transfer

type StoryCreation struct {
	Name        string         `json:"name"`
	Status      string         `json:"status"`
	PublishedAt string         `json:"published_at"` // RFC 3339
	PlatformID  int64          `json:"platform_id"`
	Posts       []PostCreation `json:"posts"`
}

// PostCreation entries are stored in the order given; that order becomes the
// post position.
type PostCreation struct {
	URL            string `json:"url"`
	ConvertedURL   string `json:"converted_url"`
	MediaType      string `json:"media_type"`
	ExternalPostID string `json:"external_post_id"`
}
