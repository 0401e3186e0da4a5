package domain

import "time"

// Comment is a single social-media comment pulled for a campaign.
type Comment struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Author     string    `json:"author"`
	Username   string    `json:"username"`
	Content    string    `json:"content"`
	Source     Source    `json:"source"`
	Query      string    `json:"query"`
	CreatedAt  time.Time `json:"created_at"`
}

// ClassifiedComment is a comment with the topic the campaign rules assigned to it.
type ClassifiedComment struct {
	Comment
	Campaign     string    `json:"campaign"`
	Topic        string    `json:"topic"`
	Rule         string    `json:"rule"`
	ClassifiedAt time.Time `json:"classified_at"`
}

type Source string

const (
	SourceTwitter   Source = "twitter"
	SourceInstagram Source = "instagram"
	SourceFacebook  Source = "facebook"
	SourceTikTok    Source = "tiktok"
)
