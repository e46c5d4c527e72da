package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
)

// Field length limits carried over from the concern schema.
const (
	MaxTitleLength        = 200
	MaxDescriptionLength  = 2000
	MaxFeedbackLength     = 1000
	MaxConcernAttachments = 5

	MinRating = 1
	MaxRating = 5
)

// TicketCodePattern is the visible format of a ticket code, e.g. BRT000042.
var TicketCodePattern = regexp.MustCompile(`^BRT\d{6}$`)

// ConcernStatus represents the lifecycle state of a concern.
type ConcernStatus string

const (
	StatusSubmitted  ConcernStatus = "Submitted"
	StatusInReview   ConcernStatus = "In Review"
	StatusAssigned   ConcernStatus = "Assigned"
	StatusInProgress ConcernStatus = "In Progress"
	StatusResolved   ConcernStatus = "Resolved"
	StatusClosed     ConcernStatus = "Closed"
	StatusReopened   ConcernStatus = "Reopened"
)

// AllStatuses lists every valid concern status.
var AllStatuses = []ConcernStatus{
	StatusSubmitted,
	StatusInReview,
	StatusAssigned,
	StatusInProgress,
	StatusResolved,
	StatusClosed,
	StatusReopened,
}

// IsValid reports whether the status is a known lifecycle state.
func (s ConcernStatus) IsValid() bool {
	for _, valid := range AllStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// IsTerminalForRating reports whether a concern in this status may be rated.
func (s ConcernStatus) IsTerminalForRating() bool {
	return s == StatusResolved || s == StatusClosed
}

// Severity represents the urgency of a concern.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// IsValid reports whether the severity is a known value.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Category classifies what a concern is about.
type Category string

const (
	CategoryTechnical      Category = "Technical"
	CategoryPersonal       Category = "Personal"
	CategoryFinancial      Category = "Financial"
	CategoryBehavioral     Category = "Behavioral"
	CategoryMisconduct     Category = "Misconduct"
	CategoryInfrastructure Category = "Infrastructure"
	CategoryCourseContent  Category = "Course Content"
	CategoryMentorRelated  Category = "Mentor Related"
	CategoryOther          Category = "Other"
)

// IsValid reports whether the category is a known value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryTechnical, CategoryPersonal, CategoryFinancial,
		CategoryBehavioral, CategoryMisconduct, CategoryInfrastructure,
		CategoryCourseContent, CategoryMentorRelated, CategoryOther:
		return true
	}
	return false
}

// Attachment holds metadata for an uploaded file.
type Attachment struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Path         string    `json:"path"`
	MimeType     string    `json:"mimetype"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// TimelineEntry is one append-only audit record of a status change.
// Entries are never edited or removed once written.
type TimelineEntry struct {
	Status    ConcernStatus `json:"status"`
	UpdatedBy *uuid.UUID    `json:"updatedBy,omitempty"`
	Comment   string        `json:"comment,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Concern is the core domain entity: a student-submitted issue tracked
// through its status lifecycle.
type Concern struct {
	ID          uuid.UUID
	TicketCode  string // assigned exactly once at creation, immutable
	StudentID   uuid.UUID
	AssignedTo  *uuid.UUID
	Title       string
	Description string
	Category    Category
	Severity    Severity
	Status      ConcernStatus
	IsAnonymous bool
	Campus      Campus
	Attachments []Attachment
	Timeline    []TimelineEntry
	Rating      *int
	Feedback    string
	ResolvedAt  *time.Time
	ClosedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ConcernParams holds validated input for creating a concern.
type ConcernParams struct {
	StudentID   uuid.UUID
	Title       string
	Description string
	Category    Category
	Severity    Severity
	IsAnonymous bool
	Campus      Campus
	Attachments []Attachment
}

// Validate checks the creation parameters against the field constraints.
func (p *ConcernParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.Title == "" {
		errs.Add("title", "Title is required")
	} else if len(p.Title) > MaxTitleLength {
		errs.Add("title", fmt.Sprintf("Title cannot exceed %d characters", MaxTitleLength))
	}

	if p.Description == "" {
		errs.Add("description", "Description is required")
	} else if len(p.Description) > MaxDescriptionLength {
		errs.Add("description", fmt.Sprintf("Description cannot exceed %d characters", MaxDescriptionLength))
	}

	if !p.Category.IsValid() {
		errs.Add("category", "Category is required and must be a known value")
	}

	if !p.Severity.IsValid() {
		errs.Add("severity", "Severity is required and must be a known value")
	}

	if p.Campus != "" && !p.Campus.IsValid() {
		errs.Add("campus", "Campus must be a known value")
	}

	if p.StudentID == uuid.Nil {
		errs.Add("studentId", "Student ID is required")
	}

	if len(p.Attachments) > MaxConcernAttachments {
		errs.Add("attachments", fmt.Sprintf("At most %d attachments are allowed", MaxConcernAttachments))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewConcern creates a concern in the Submitted state with the timeline
// seeded. The ticket code is assigned later by the store's sequence.
func NewConcern(params ConcernParams) (*Concern, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Concern{
		ID:          uuid.New(),
		StudentID:   params.StudentID,
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Severity:    params.Severity,
		Status:      StatusSubmitted,
		IsAnonymous: params.IsAnonymous,
		Campus:      params.Campus,
		Attachments: params.Attachments,
		Timeline: []TimelineEntry{
			{Status: StatusSubmitted, Timestamp: now},
		},
		CreatedAt: now,
	}, nil
}

// Transition records a staff-declared status change. The lifecycle is a
// recorder, not an enforcer: any valid status value is accepted regardless
// of the current state, because triage workflows are non-linear in practice.
func (c *Concern) Transition(newStatus ConcernStatus, actorID uuid.UUID, comment string) error {
	if !newStatus.IsValid() {
		return apperrors.ErrInvalidStatus
	}

	now := time.Now().UTC()
	c.Status = newStatus
	c.Timeline = append(c.Timeline, TimelineEntry{
		Status:    newStatus,
		UpdatedBy: &actorID,
		Comment:   comment,
		Timestamp: now,
	})
	c.UpdatedAt = &now

	switch newStatus {
	case StatusResolved:
		c.ResolvedAt = &now
	case StatusClosed:
		c.ClosedAt = &now
	}

	return nil
}

// Assign sets the assignee, forces the status to Assigned and appends a
// timeline entry naming the mentor.
func (c *Concern) Assign(mentorID uuid.UUID, mentorName string, actorID uuid.UUID) error {
	c.AssignedTo = &mentorID
	return c.Transition(StatusAssigned, actorID, "Assigned to "+mentorName)
}

// Rate records the owning student's rating and feedback. The timeline and
// status are left untouched.
func (c *Concern) Rate(rating int, feedback string) error {
	errs := apperrors.NewValidationErrors()

	if !c.Status.IsTerminalForRating() {
		errs.Add("status", "Can only rate resolved or closed concerns")
	}
	if rating < MinRating || rating > MaxRating {
		errs.Add("rating", fmt.Sprintf("Rating must be between %d and %d", MinRating, MaxRating))
	}
	if len(feedback) > MaxFeedbackLength {
		errs.Add("feedback", fmt.Sprintf("Feedback cannot exceed %d characters", MaxFeedbackLength))
	}

	if errs.HasErrors() {
		return errs
	}

	c.Rating = &rating
	c.Feedback = feedback
	return nil
}

// IsOwnedBy reports whether the given user submitted this concern.
func (c *Concern) IsOwnedBy(userID uuid.UUID) bool {
	return c.StudentID == userID
}

// IsAssignedTo reports whether the given user is the current assignee.
func (c *Concern) IsAssignedTo(userID uuid.UUID) bool {
	return c.AssignedTo != nil && *c.AssignedTo == userID
}

// LastTimelineEntry returns the most recent timeline entry. The timeline is
// never empty after creation, but a nil guard keeps zero-value concerns safe.
func (c *Concern) LastTimelineEntry() *TimelineEntry {
	if len(c.Timeline) == 0 {
		return nil
	}
	return &c.Timeline[len(c.Timeline)-1]
}

// StatusBucketCount is one row of a status aggregation.
type StatusBucketCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// ConcernStats aggregates ticket counts for the admin dashboard.
type ConcernStats struct {
	Total                int64               `json:"total"`
	Pending              int64               `json:"pending"`
	Resolved             int64               `json:"resolved"`
	Closed               int64               `json:"closed"`
	CategoryDistribution []StatusBucketCount `json:"categoryDistribution"`
	SeverityDistribution []StatusBucketCount `json:"severityDistribution"`
}

// PendingStatuses are the buckets counted as "pending" in stats.
var PendingStatuses = []ConcernStatus{
	StatusSubmitted,
	StatusInReview,
	StatusAssigned,
	StatusInProgress,
}
