package edu

import "time"

// Visibility controls who can see a slideshow.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
)

// Slideshow is the client's projection of a slideshow resource. The server
// owns identity and the version counter; the client only ever reads them.
type Slideshow struct {
	ID                int
	Title             string
	Description       string
	Visibility        Visibility
	Language          string
	Country           string
	Subject           string
	Published         bool
	Version           int
	CreatedBy         int
	CreatedByUsername string
	SlideCount        int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Slide is a single slide within a slideshow. ID is zero until the slide has
// been persisted; until then TempID carries a client-assigned identity so the
// editor can track slides across reorders. Content and Notes are only
// populated when the requesting user owns the slideshow.
type Slide struct {
	ID       int
	TempID   string
	Order    int
	Title    string
	Content  string
	Rendered string
	Notes    string
}

// SlideshowDetail is the detail-endpoint payload: metadata plus whatever
// slides the response included. With progressive loading the initial request
// carries only the first few slides, and RemainingSlideIDs lists the rest in
// order.
type SlideshowDetail struct {
	Slideshow
	Slides            []Slide
	RemainingSlideIDs []int
}

// Draft is a locally persisted, possibly-unsaved edit of a slideshow.
// Version is the server version the draft was based on; it must be compared
// against the server's current version before the draft is trusted.
type Draft struct {
	Key         string
	ShowID      int
	Title       string
	Description string
	Visibility  Visibility
	Language    string
	Country     string
	Subject     string
	Published   bool
	Version     int
	Slides      []Slide
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ShowInput is the request body for creating or updating a slideshow.
// Version carries the client's last-known server version so the server can
// reject stale writes.
type ShowInput struct {
	Title       string     `validate:"required,max=200"`
	Description string     `validate:"max=1000"`
	Visibility  Visibility `validate:"required,oneof=public unlisted private"`
	Language    string     `validate:"max=64"`
	Country     string     `validate:"max=64"`
	Subject     string     `validate:"max=64"`
	Published   bool
	Version     int
	Slides      []SlideInput `validate:"min=1,dive"`
}

// SlideInput is a single slide within a create/update request.
type SlideInput struct {
	Order   int    `validate:"min=0"`
	Title   string `validate:"max=200"`
	Content string `validate:"required"`
	Notes   string
}

// CourseVisibility controls who can see a course.
type CourseVisibility string

const (
	CourseVisibilityPublic     CourseVisibility = "public"
	CourseVisibilityPrivate    CourseVisibility = "private"
	CourseVisibilityRestricted CourseVisibility = "restricted"
)

// Course is the client's projection of a course resource.
type Course struct {
	ID                int
	Title             string
	Outline           string
	Language          string
	Country           string
	Subject           string
	Visibility        CourseVisibility
	StartDate         time.Time
	EndDate           time.Time
	IsActive          bool
	AllowJoinRequests bool
}

// CourseInput is the request body for creating or updating a course.
type CourseInput struct {
	Title             string           `validate:"required,max=128"`
	Outline           string           `validate:"max=1000"`
	Language          string           `validate:"max=64"`
	Country           string           `validate:"max=64"`
	Subject           string           `validate:"max=64"`
	Visibility        CourseVisibility `validate:"required,oneof=public private restricted"`
	IsActive          bool
	AllowJoinRequests bool
}

// Membership statuses as the courses API reports them.
const (
	MembershipPending  = "pending"
	MembershipInvited  = "invited"
	MembershipEnrolled = "enrolled"
	MembershipDenied   = "denied"
)

// CourseModule is one modular unit within a course, linking a piece of
// content (lecture, quiz, assignment) by type and ID. ContentType uses the
// backend's "app_label.model" form.
type CourseModule struct {
	ID          int
	CourseID    int
	CourseTitle string
	Title       string
	Order       int
	ContentType string
	ObjectID    int
}

// CourseModuleInput is the request body for creating or updating a module.
type CourseModuleInput struct {
	Title       string `validate:"max=128"`
	Order       int    `validate:"min=0"`
	ContentType string `validate:"required,contains=."`
	ObjectID    int    `validate:"required,min=1"`
}

// CourseMembership is one user's membership in a course.
type CourseMembership struct {
	ID       int
	CourseID int
	UserID   int
	Username string
	Role     string
	Status   string
}

// Profile is the authenticated user's profile.
type Profile struct {
	ID                int
	Username          string
	Bio               string
	Occupation        string
	Country           string
	PreferredLanguage string
	FriendsCount      int
}

// ProfileInput is the request body for updating the user's own profile.
type ProfileInput struct {
	Bio               string `validate:"max=1000"`
	Occupation        string `validate:"max=64"`
	Country           string `validate:"max=64"`
	PreferredLanguage string `validate:"max=64"`
}
