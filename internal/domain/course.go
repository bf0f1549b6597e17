package domain

import "time"

const (
	CourseLevelBasic    = "basic"
	CourseLevelMedium   = "medium"
	CourseLevelAdvanced = "advanced"
)

const (
	CourseFrequencySingle  = "single"
	CourseFrequencyWeekly  = "weekly"
	CourseFrequencyMonthly = "monthly"
)

type Course struct {
	CourseID         string    `json:"id" dynamodbav:"course_id"`
	Name             string    `json:"name" dynamodbav:"name"`
	ShortDescription string    `json:"short_description" dynamodbav:"short_description"`
	Description      string    `json:"description" dynamodbav:"description"`
	Location         string    `json:"location" dynamodbav:"location"`
	Instructors      []string  `json:"instructors" dynamodbav:"instructors"`
	Price            float64   `json:"price" dynamodbav:"price"`
	Level            string    `json:"level" dynamodbav:"level"`
	CategoryID       string    `json:"category_id" dynamodbav:"category_id"`
	Frequency        string    `json:"frequency" dynamodbav:"frequency"`
	Schedule         []string  `json:"schedule" dynamodbav:"schedule"` // e.g. "Mon 18:00-19:00"
	SubscribeFrom    time.Time `json:"subscribe_from" dynamodbav:"subscribe_from"`
	SubscribeUntil   time.Time `json:"subscribe_until" dynamodbav:"subscribe_until"`
	MaxSubscribers   int       `json:"max_subscribers" dynamodbav:"max_subscribers"` // 0 = unlimited
	ImageKey         *string   `json:"image_key,omitempty" dynamodbav:"image_key"`
	CreatedByUserID  string    `json:"created_by" dynamodbav:"created_by_user_id"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateCourseRequest struct {
	Name             string   `json:"name" validate:"required"`
	ShortDescription string   `json:"short_description"`
	Description      string   `json:"description"`
	Location         string   `json:"location"`
	Instructors      []string `json:"instructors"`
	Price            float64  `json:"price" validate:"gte=0"`
	Level            string   `json:"level" validate:"required,oneof=basic medium advanced"`
	CategoryID       string   `json:"category_id" validate:"required"`
	Frequency        string   `json:"frequency" validate:"required,oneof=single weekly monthly"`
	Schedule         []string `json:"schedule"`
	SubscribeFrom    string   `json:"subscribe_from"`  // RFC 3339
	SubscribeUntil   string   `json:"subscribe_until"` // RFC 3339
	MaxSubscribers   int      `json:"max_subscribers" validate:"gte=0"`
}

type UpdateCourseRequest struct {
	Name             *string   `json:"name"`
	ShortDescription *string   `json:"short_description"`
	Description      *string   `json:"description"`
	Location         *string   `json:"location"`
	Instructors      *[]string `json:"instructors"`
	Price            *float64  `json:"price"`
	Level            *string   `json:"level"`
	CategoryID       *string   `json:"category_id"`
	Frequency        *string   `json:"frequency"`
	Schedule         *[]string `json:"schedule"`
	SubscribeFrom    *string   `json:"subscribe_from"`
	SubscribeUntil   *string   `json:"subscribe_until"`
	MaxSubscribers   *int      `json:"max_subscribers"`
}
