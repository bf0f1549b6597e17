package domain

import "time"

// CourseImage is the metadata row for a course picture stored in S3.
type CourseImage struct {
	ImageID          string    `json:"id" dynamodbav:"image_id"`
	CourseID         string    `json:"course_id" dynamodbav:"course_id"`
	Object           string    `json:"object" dynamodbav:"object"` // S3 key
	Size             int64     `json:"size" dynamodbav:"size"`
	Type             string    `json:"type" dynamodbav:"type"`
	Name             string    `json:"name" dynamodbav:"name"`
	Hash             string    `json:"hash" dynamodbav:"hash"`
	URL              *string   `json:"url" dynamodbav:"url"`
	UploadedByUserID string    `json:"uploaded_by" dynamodbav:"uploaded_by_user_id"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}
