package domain

import "time"

// Subscription enrolls one user in one course.
// PK: course_id, SK: user_id — the composite key makes double enrollment
// impossible at the storage layer. Course name and subscriber name are
// denormalized so listings don't fan out into per-row lookups.
type Subscription struct {
	CourseID       string    `json:"course_id" dynamodbav:"course_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	CourseName     string    `json:"course_name" dynamodbav:"course_name"`
	SubscriberName string    `json:"subscriber_name" dynamodbav:"subscriber_name"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}

type SubscribeRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	// UserID may be set by admins to enroll someone else; defaults to the caller.
	UserID string `json:"user_id"`
}
