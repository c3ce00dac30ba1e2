package models

import "time"

// CourseLevel is the difficulty of a course.
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "BEGINNER"
	LevelIntermediate CourseLevel = "INTERMEDIATE"
	LevelAdvanced     CourseLevel = "ADVANCED"
)

// Valid reports whether the level is one of the known values.
func (l CourseLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Course mirrors the backend course resource.
type Course struct {
	ID                    string      `json:"id"`
	Title                 string      `json:"title"`
	Description           string      `json:"description"`
	ShortDescription      string      `json:"shortDescription"`
	Price                 float64     `json:"price"`
	DiscountedPrice       *float64    `json:"discountedPrice,omitempty"`
	Currency              string      `json:"currency"`
	CategoryID            string      `json:"categoryId"`
	CategoryName          string      `json:"categoryName"`
	InstructorID          string      `json:"instructorId"`
	InstructorName        string      `json:"instructorName"`
	Level                 CourseLevel `json:"level"`
	Language              string      `json:"language"`
	Duration              int         `json:"duration"`
	TotalLectures         int         `json:"totalLectures"`
	EnrolledStudentsCount int         `json:"enrolledStudentsCount"`
	AverageRating         float64     `json:"averageRating"`
	TotalReviews          int         `json:"totalReviews"`
	ThumbnailURL          string      `json:"thumbnailUrl,omitempty"`
	PreviewVideoURL       string      `json:"previewVideoUrl,omitempty"`
	Requirements          string      `json:"requirements,omitempty"`
	WhatYouWillLearn      string      `json:"whatYouWillLearn,omitempty"`
	TargetAudience        string      `json:"targetAudience,omitempty"`
	IsPublished           bool        `json:"isPublished"`
	IsFeatured            bool        `json:"isFeatured"`
	HasCertificate        bool        `json:"hasCertificate"`
	HasLifetimeAccess     bool        `json:"hasLifetimeAccess"`
	Tags                  []string    `json:"tags"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
	IsEnrolled            *bool       `json:"isEnrolled,omitempty"`
}

// CourseRequest creates or updates a course.
type CourseRequest struct {
	Title             string      `json:"title" validate:"required,min=3,max=200"`
	Description       string      `json:"description" validate:"required"`
	ShortDescription  string      `json:"shortDescription" validate:"required,max=300"`
	Price             float64     `json:"price" validate:"gte=0"`
	CategoryID        string      `json:"categoryId" validate:"required"`
	Level             CourseLevel `json:"level" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Language          string      `json:"language" validate:"required"`
	Duration          int         `json:"duration" validate:"gte=0"`
	Requirements      string      `json:"requirements,omitempty"`
	WhatYouWillLearn  string      `json:"whatYouWillLearn,omitempty"`
	TargetAudience    string      `json:"targetAudience,omitempty"`
	IsPublished       bool        `json:"isPublished"`
	IsFeatured        bool        `json:"isFeatured"`
	HasCertificate    bool        `json:"hasCertificate"`
	HasLifetimeAccess bool        `json:"hasLifetimeAccess"`
	Tags              []string    `json:"tags,omitempty"`
	ThumbnailURL      string      `json:"thumbnailUrl,omitempty" validate:"omitempty,url"`
	PreviewVideoURL   string      `json:"previewVideoUrl,omitempty" validate:"omitempty,url"`
}

// Enrollment mirrors the backend enrollment resource.
type Enrollment struct {
	ID             string     `json:"id"`
	CourseID       string     `json:"courseId"`
	StudentID      string     `json:"studentId"`
	EnrolledAt     time.Time  `json:"enrolledAt"`
	Progress       int        `json:"progress"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	CertificateURL string     `json:"certificateUrl,omitempty"`
}
