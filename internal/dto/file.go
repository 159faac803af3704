package dto

import "time"

type UploadResponse struct {
	Bucket       string    `json:"bucket"`
	ObjectName   string    `json:"objectName"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	PresignedURL string    `json:"presignedUrl"`
	UploadDate   time.Time `json:"uploadDate"`
}

type PresignRequest struct {
	ObjectName    string `json:"objectName" validate:"required"`
	ExpirySeconds int    `json:"expirySeconds" validate:"omitempty,min=1,max=604800"`
}

type PresignResponse struct {
	PresignedURL  string    `json:"presignedUrl"`
	Bucket        string    `json:"bucket"`
	ObjectName    string    `json:"objectName"`
	ExpirySeconds int       `json:"expirySeconds"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type DeleteResponse struct {
	Bucket     string    `json:"bucket"`
	ObjectName string    `json:"objectName"`
	DeletedAt  time.Time `json:"deletedAt"`
}
