package transfer

// SchedulePayload is delivered to the publish endpoint when a story's
// schedule fires. Posts are in publish order.
type SchedulePayload struct {
	StoryID          int64          `json:"story_id"`
	StoryName        string         `json:"story_name"`
	Platform         string         `json:"platform"`
	Login            string         `json:"login"`
	Password         string         `json:"password"` // encrypted at rest, decrypted by the publisher
	RestaurantID     int64          `json:"restaurant_id"`
	RestaurantName   string         `json:"restaurant_name"`
	OrganizationID   int64          `json:"organization_id"`
	OrganizationName string         `json:"organization_name"`
	Posts            []SchedulePost `json:"posts"`
}

type SchedulePost struct {
	PostID int64  `json:"post_id"`
	URL    string `json:"url"`
	Type   string `json:"type"`
}
