package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concernrise/concern-backend/internal/core/domain"
	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

func createTestConcern(t *testing.T, student *domain.User) *domain.Concern {
	t.Helper()

	concern, err := domain.NewConcern(domain.ConcernParams{
		StudentID:   student.ID,
		Title:       "Hostel wifi keeps dropping",
		Description: "The connection in block B drops every evening after 7pm.",
		Category:    domain.CategoryInfrastructure,
		Severity:    domain.SeverityHigh,
		Campus:      domain.CampusKochi,
		Attachments: []domain.Attachment{
			{
				Filename:     "speedtest.png",
				OriginalName: "speedtest.png",
				Path:         "/uploads/speedtest.png",
				MimeType:     "image/png",
				Size:         1024,
				UploadedAt:   time.Now().UTC(),
			},
		},
	})
	require.NoError(t, err)

	repo := NewConcernRepository(testPool)
	created, err := repo.Create(context.Background(), concern)
	require.NoError(t, err)
	return created
}

func TestConcernRepository_Create_AssignsTicketCode(t *testing.T) {
	student := createTestUser(t, domain.RoleStudent)

	first := createTestConcern(t, student)
	second := createTestConcern(t, student)

	assert.Regexp(t, domain.TicketCodePattern, first.TicketCode)
	assert.Regexp(t, domain.TicketCodePattern, second.TicketCode)
	assert.NotEqual(t, first.TicketCode, second.TicketCode)
	assert.Greater(t, second.TicketCode, first.TicketCode)
}

func TestConcernRepository_GetByID_Roundtrip(t *testing.T) {
	repo := NewConcernRepository(testPool)
	ctx := context.Background()

	student := createTestUser(t, domain.RoleStudent)
	created := createTestConcern(t, student)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.TicketCode, fetched.TicketCode)
	assert.Equal(t, student.ID, fetched.StudentID)
	assert.Equal(t, domain.StatusSubmitted, fetched.Status)
	assert.Equal(t, domain.CategoryInfrastructure, fetched.Category)
	assert.Equal(t, domain.SeverityHigh, fetched.Severity)

	require.Len(t, fetched.Attachments, 1)
	assert.Equal(t, "speedtest.png", fetched.Attachments[0].Filename)
	assert.Equal(t, int64(1024), fetched.Attachments[0].Size)

	require.Len(t, fetched.Timeline, 1)
	assert.Equal(t, domain.StatusSubmitted, fetched.Timeline[0].Status)
}

func TestConcernRepository_GetByID_NotFound(t *testing.T) {
	repo := NewConcernRepository(testPool)

	student := createTestUser(t, domain.RoleStudent)
	concern := createTestConcern(t, student)
	require.NoError(t, repo.Delete(context.Background(), concern.ID))

	_, err := repo.GetByID(context.Background(), concern.ID)
	assert.ErrorIs(t, err, apperrors.ErrConcernNotFound)
}

func TestConcernRepository_Update_AppendsTimeline(t *testing.T) {
	repo := NewConcernRepository(testPool)
	ctx := context.Background()

	student := createTestUser(t, domain.RoleStudent)
	mentor := createTestUser(t, domain.RoleMentor)
	concern := createTestConcern(t, student)

	require.NoError(t, concern.Transition(domain.StatusInProgress, mentor.ID, "Looking into it"))

	updated, err := repo.Update(ctx, concern)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)

	fetched, err := repo.GetByID(ctx, concern.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Timeline, 2)
	assert.Equal(t, domain.StatusInProgress, fetched.Timeline[1].Status)
	assert.Equal(t, "Looking into it", fetched.Timeline[1].Comment)
	require.NotNil(t, fetched.Timeline[1].UpdatedBy)
	assert.Equal(t, mentor.ID, *fetched.Timeline[1].UpdatedBy)

	// Saving the same concern again must not duplicate timeline rows.
	_, err = repo.Update(ctx, concern)
	require.NoError(t, err)

	fetched, err = repo.GetByID(ctx, concern.ID)
	require.NoError(t, err)
	assert.Len(t, fetched.Timeline, 2)
}

func TestConcernRepository_Update_ConcurrentTransitionsKeepAllEntries(t *testing.T) {
	repo := NewConcernRepository(testPool)
	ctx := context.Background()

	student := createTestUser(t, domain.RoleStudent)
	mentor := createTestUser(t, domain.RoleMentor)
	admin := createTestUser(t, domain.RoleAdmin)
	concern := createTestConcern(t, student)

	// Both writers load the same snapshot before either commits.
	transitions := []struct {
		actor  *domain.User
		status domain.ConcernStatus
	}{
		{mentor, domain.StatusInProgress},
		{admin, domain.StatusInReview},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(transitions))
	for i, tr := range transitions {
		loaded, err := repo.GetByID(ctx, concern.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.Transition(tr.status, tr.actor.ID, "concurrent change"))

		wg.Add(1)
		go func(i int, c *domain.Concern) {
			defer wg.Done()
			_, errs[i] = repo.Update(ctx, c)
		}(i, loaded)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	// The status is last-writer-wins, but the timeline records both
	// accepted transitions on top of the submission entry.
	fetched, err := repo.GetByID(ctx, concern.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Timeline, 3)

	recorded := make([]domain.ConcernStatus, 0, 2)
	for _, entry := range fetched.Timeline[1:] {
		recorded = append(recorded, entry.Status)
	}
	assert.ElementsMatch(t, []domain.ConcernStatus{domain.StatusInProgress, domain.StatusInReview}, recorded)
	assert.Contains(t, recorded, fetched.Status)
}

func TestConcernRepository_Update_Assignment(t *testing.T) {
	repo := NewConcernRepository(testPool)
	ctx := context.Background()

	student := createTestUser(t, domain.RoleStudent)
	mentor := createTestUser(t, domain.RoleMentor)
	admin := createTestUser(t, domain.RoleAdmin)
	concern := createTestConcern(t, student)

	require.NoError(t, concern.Assign(mentor.ID, mentor.FullName, admin.ID))

	updated, err := repo.Update(ctx, concern)
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, mentor.ID, *updated.AssignedTo)
	assert.Equal(t, domain.StatusAssigned, updated.Status)
}

func TestConcernRepository_List_Filters(t *testing.T) {
	repo := NewConcernRepository(testPool)
	ctx := context.Background()

	student := createTestUser(t, domain.RoleStudent)
	concern := createTestConcern(t, student)

	concerns, err := repo.List(ctx, ports.ConcernFilter{StudentID: &student.ID})
	require.NoError(t, err)
	require.Len(t, concerns, 1)
	assert.Equal(t, concern.ID, concerns[0].ID)
	require.Len(t, concerns[0].Timeline, 1)

	status := domain.StatusClosed
	concerns, err = repo.List(ctx, ports.ConcernFilter{StudentID: &student.ID, Status: &status})
	require.NoError(t, err)
	assert.Empty(t, concerns)
}

func TestConcernRepository_List_SearchByTicketCode(t *testing.T) {
	repo := NewConcernRepository(testPool)
	ctx := context.Background()

	student := createTestUser(t, domain.RoleStudent)
	concern := createTestConcern(t, student)

	concerns, err := repo.List(ctx, ports.ConcernFilter{Search: concern.TicketCode})
	require.NoError(t, err)
	require.Len(t, concerns, 1)
	assert.Equal(t, concern.ID, concerns[0].ID)
}

func TestConcernRepository_Stats(t *testing.T) {
	repo := NewConcernRepository(testPool)
	ctx := context.Background()

	student := createTestUser(t, domain.RoleStudent)
	createTestConcern(t, student)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, stats.Total, int64(1))
	assert.GreaterOrEqual(t, stats.Pending, int64(1))

	var infra int64
	for _, bucket := range stats.CategoryDistribution {
		if bucket.Label == string(domain.CategoryInfrastructure) {
			infra = bucket.Count
		}
	}
	assert.GreaterOrEqual(t, infra, int64(1))
}
