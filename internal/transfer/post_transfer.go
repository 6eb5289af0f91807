package transfer

type PostCreation struct {
	Platform      string `json:"platform"`
	Content       string `json:"content"`
	ImageURL      string `json:"imageUrl"`
	VideoURL      string `json:"videoUrl"`
	Title         string `json:"title"`
	BoardID       string `json:"boardId"`
	PrivacyStatus string `json:"privacyStatus"`
	ScheduledAt   string `json:"scheduledAt"`
}

// PublishRequest is the body of the direct publish endpoint. UserEmail is
// only honored when the caller authenticated with the shared cron secret;
// session callers always act as themselves.
type PublishRequest struct {
	UserEmail     string `json:"user_email"`
	Content       string `json:"content"`
	ImageURL      string `json:"imageUrl"`
	VideoURL      string `json:"videoUrl"`
	Title         string `json:"title"`
	BoardID       string `json:"boardId"`
	PrivacyStatus string `json:"privacyStatus"`
}
