package models

import "time"

type Video struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Uploader    string    `json:"uploader"`
	StoragePath string    `json:"storagePath"`
	Likes       int       `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Comment struct {
	ID        int64     `json:"id"`
	VideoID   int64     `json:"videoId"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Follow struct {
	Follower      string    `json:"follower"`
	Followee      string    `json:"followee"`
	SourceVideoID *int64    `json:"sourceVideoId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ChatMessage struct {
	ID             int64     `json:"id"`
	Author         string    `json:"author"`
	Text           string    `json:"text"`
	AttachmentPath *string   `json:"attachmentPath,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
