package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"edulite-cli/internal/edu"
)

type courseBody struct {
	ID                int       `json:"id"`
	Title             string    `json:"title"`
	Outline           string    `json:"outline"`
	Language          string    `json:"language"`
	Country           string    `json:"country"`
	Subject           string    `json:"subject"`
	Visibility        string    `json:"visibility"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	IsActive          bool      `json:"is_active"`
	AllowJoinRequests bool      `json:"allow_join_requests"`
}

func (b courseBody) model() edu.Course {
	return edu.Course{
		ID:                b.ID,
		Title:             b.Title,
		Outline:           b.Outline,
		Language:          b.Language,
		Country:           b.Country,
		Subject:           b.Subject,
		Visibility:        edu.CourseVisibility(b.Visibility),
		StartDate:         b.StartDate,
		EndDate:           b.EndDate,
		IsActive:          b.IsActive,
		AllowJoinRequests: b.AllowJoinRequests,
	}
}

type courseInputBody struct {
	Title             string `json:"title"`
	Outline           string `json:"outline,omitempty"`
	Language          string `json:"language,omitempty"`
	Country           string `json:"country,omitempty"`
	Subject           string `json:"subject,omitempty"`
	Visibility        string `json:"visibility"`
	IsActive          bool   `json:"is_active"`
	AllowJoinRequests bool   `json:"allow_join_requests"`
}

func encodeCourseInput(in edu.CourseInput) courseInputBody {
	return courseInputBody{
		Title:             in.Title,
		Outline:           in.Outline,
		Language:          in.Language,
		Country:           in.Country,
		Subject:           in.Subject,
		Visibility:        string(in.Visibility),
		IsActive:          in.IsActive,
		AllowJoinRequests: in.AllowJoinRequests,
	}
}

type moduleBody struct {
	ID          int    `json:"id"`
	Course      int    `json:"course"`
	CourseTitle string `json:"course_title"`
	Title       string `json:"title"`
	Order       int    `json:"order"`
	ContentType string `json:"content_type"`
	ObjectID    int    `json:"object_id"`
}

func (b moduleBody) model() edu.CourseModule {
	return edu.CourseModule{
		ID:          b.ID,
		CourseID:    b.Course,
		CourseTitle: b.CourseTitle,
		Title:       b.Title,
		Order:       b.Order,
		ContentType: b.ContentType,
		ObjectID:    b.ObjectID,
	}
}

type moduleInputBody struct {
	Title       string `json:"title,omitempty"`
	Order       int    `json:"order"`
	ContentType string `json:"content_type"`
	ObjectID    int    `json:"object_id"`
}

func encodeModuleInput(in edu.CourseModuleInput) moduleInputBody {
	return moduleInputBody{
		Title:       in.Title,
		Order:       in.Order,
		ContentType: in.ContentType,
		ObjectID:    in.ObjectID,
	}
}

type membershipBody struct {
	ID       int    `json:"id"`
	Course   int    `json:"course"`
	User     int    `json:"user"`
	Username string `json:"user_username"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func (b membershipBody) model() edu.CourseMembership {
	return edu.CourseMembership{
		ID:       b.ID,
		CourseID: b.Course,
		UserID:   b.User,
		Username: b.Username,
		Role:     b.Role,
		Status:   b.Status,
	}
}

// ListCourses returns one page of courses visible to the user.
func (c *Client) ListCourses(ctx context.Context, opts ListOptions) (*Page[edu.Course], error) {
	var page Page[courseBody]
	if err := c.do(ctx, http.MethodGet, "/courses/", opts.query(), nil, &page); err != nil {
		return nil, err
	}
	out := &Page[edu.Course]{
		Count:       page.Count,
		Next:        page.Next,
		Previous:    page.Previous,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
	}
	for _, b := range page.Results {
		out.Results = append(out.Results, b.model())
	}
	return out, nil
}

// Course fetches one course.
func (c *Client) Course(ctx context.Context, id int) (*edu.Course, error) {
	var body courseBody
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/", id), nil, nil, &body); err != nil {
		return nil, err
	}
	course := body.model()
	return &course, nil
}

// CreateCourse creates a course.
func (c *Client) CreateCourse(ctx context.Context, in edu.CourseInput) (*edu.Course, error) {
	if err := c.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid course: %w", err)
	}
	var body courseBody
	if err := c.do(ctx, http.MethodPost, "/courses/", nil, encodeCourseInput(in), &body); err != nil {
		return nil, err
	}
	course := body.model()
	return &course, nil
}

// UpdateCourse updates a course. Teacher only.
func (c *Client) UpdateCourse(ctx context.Context, id int, in edu.CourseInput) (*edu.Course, error) {
	if err := c.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid course: %w", err)
	}
	var body courseBody
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/courses/%d/", id), nil, encodeCourseInput(in), &body); err != nil {
		return nil, err
	}
	course := body.model()
	return &course, nil
}

// DeleteCourse deletes a course. Teacher only.
func (c *Client) DeleteCourse(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/courses/%d/", id), nil, nil, nil)
}

// Modules lists a course's modules in display order. The endpoint returns
// the full list, not a pagination envelope. Course members only.
func (c *Client) Modules(ctx context.Context, courseID int) ([]edu.CourseModule, error) {
	var bodies []moduleBody
	path := fmt.Sprintf("/courses/%d/modules/", courseID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &bodies); err != nil {
		return nil, err
	}
	modules := make([]edu.CourseModule, 0, len(bodies))
	for _, b := range bodies {
		modules = append(modules, b.model())
	}
	return modules, nil
}

// Module fetches one course module.
func (c *Client) Module(ctx context.Context, courseID, moduleID int) (*edu.CourseModule, error) {
	var body moduleBody
	path := fmt.Sprintf("/courses/%d/modules/%d/", courseID, moduleID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &body); err != nil {
		return nil, err
	}
	m := body.model()
	return &m, nil
}

// CreateModule adds a module to a course. Teacher only.
func (c *Client) CreateModule(ctx context.Context, courseID int, in edu.CourseModuleInput) (*edu.CourseModule, error) {
	if err := c.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid module: %w", err)
	}
	var body moduleBody
	path := fmt.Sprintf("/courses/%d/modules/", courseID)
	if err := c.do(ctx, http.MethodPost, path, nil, encodeModuleInput(in), &body); err != nil {
		return nil, err
	}
	m := body.model()
	return &m, nil
}

// UpdateModule updates a course module. Teacher only.
func (c *Client) UpdateModule(ctx context.Context, courseID, moduleID int, in edu.CourseModuleInput) (*edu.CourseModule, error) {
	if err := c.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid module: %w", err)
	}
	var body moduleBody
	path := fmt.Sprintf("/courses/%d/modules/%d/", courseID, moduleID)
	if err := c.do(ctx, http.MethodPatch, path, nil, encodeModuleInput(in), &body); err != nil {
		return nil, err
	}
	m := body.model()
	return &m, nil
}

// DeleteModule removes a module from a course. Teacher only.
func (c *Client) DeleteModule(ctx context.Context, courseID, moduleID int) error {
	path := fmt.Sprintf("/courses/%d/modules/%d/", courseID, moduleID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Enroll requests enrollment in a course. Depending on the course's settings
// the resulting membership is enrolled or pending.
func (c *Client) Enroll(ctx context.Context, courseID int) (*edu.CourseMembership, error) {
	var body membershipBody
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/courses/%d/enroll/", courseID), nil, nil, &body); err != nil {
		return nil, err
	}
	m := body.model()
	return &m, nil
}

// Memberships lists a course's memberships.
func (c *Client) Memberships(ctx context.Context, courseID int, opts ListOptions) (*Page[edu.CourseMembership], error) {
	var page Page[membershipBody]
	path := fmt.Sprintf("/courses/%d/members/", courseID)
	if err := c.do(ctx, http.MethodGet, path, opts.query(), nil, &page); err != nil {
		return nil, err
	}
	out := &Page[edu.CourseMembership]{
		Count:       page.Count,
		Next:        page.Next,
		Previous:    page.Previous,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
	}
	for _, b := range page.Results {
		out.Results = append(out.Results, b.model())
	}
	return out, nil
}

// InviteMember invites a user into a course with the given role.
func (c *Client) InviteMember(ctx context.Context, courseID, userID int, role string) (*edu.CourseMembership, error) {
	req := map[string]any{"user": userID, "role": role}
	var body membershipBody
	path := fmt.Sprintf("/courses/%d/members/", courseID)
	if err := c.do(ctx, http.MethodPost, path, nil, req, &body); err != nil {
		return nil, err
	}
	m := body.model()
	return &m, nil
}

// UpdateMembership approves, denies or re-roles a membership. Pass empty
// strings to leave a field unchanged.
func (c *Client) UpdateMembership(ctx context.Context, courseID, membershipID int, status, role string) (*edu.CourseMembership, error) {
	req := map[string]any{}
	if status != "" {
		req["status"] = status
	}
	if role != "" {
		req["role"] = role
	}
	var body membershipBody
	path := fmt.Sprintf("/courses/%d/members/%d/", courseID, membershipID)
	if err := c.do(ctx, http.MethodPatch, path, nil, req, &body); err != nil {
		return nil, err
	}
	m := body.model()
	return &m, nil
}

// RemoveMember removes a membership from a course.
func (c *Client) RemoveMember(ctx context.Context, courseID, membershipID int) error {
	path := fmt.Sprintf("/courses/%d/members/%d/", courseID, membershipID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
