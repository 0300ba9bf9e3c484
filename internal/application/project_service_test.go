package application

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	"github.com/craftfolio/craftfolio-api/pkg/apperr"
	"github.com/craftfolio/craftfolio-api/pkg/assist"
)

func newProjectFixture(t *testing.T, ai *assist.Client) (*ProjectService, *fakeProfiles, *entity.Profile) {
	t.Helper()
	profiles := newFakeProfiles()
	owner := &entity.Profile{
		CrossRef:   "cr-owner",
		FriendlyID: "jane-a1b2c3d4",
		Username:   "jane",
		Profession: "Web Developer",
	}
	require.NoError(t, profiles.Create(context.Background(), owner))
	svc := NewProjectService(newFakeProjects(), profiles, nil, ai, testLogger())
	return svc, profiles, owner
}

func TestProjectCRUDOwnerChecks(t *testing.T) {
	svc, profiles, owner := newProjectFixture(t, nil)

	created, err := svc.Create(context.Background(), owner.ID, ProjectInput{
		Title:       "Taskboard",
		Description: "A kanban tool",
		Tags:        []string{"go", "web"},
	})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())

	other := &entity.Profile{CrossRef: "cr-bob", FriendlyID: "bob-x", Username: "bob"}
	require.NoError(t, profiles.Create(context.Background(), other))

	newTitle := "Taskboard v2"
	_, err = svc.Update(context.Background(), other.ID, created.ID.Hex(), UpdateProjectInput{Title: &newTitle})
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	updated, err := svc.Update(context.Background(), owner.ID, created.ID.Hex(), UpdateProjectInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Taskboard v2", updated.Title)

	err = svc.Delete(context.Background(), other.ID, created.ID.Hex())
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	require.NoError(t, svc.Delete(context.Background(), owner.ID, created.ID.Hex()))
}

func TestFeedbackRespectsOptIn(t *testing.T) {
	svc, profiles, owner := newProjectFixture(t, nil)

	closed, err := svc.Create(context.Background(), owner.ID, ProjectInput{
		Title: "Closed", Description: "d", FeedbackAllowed: false,
	})
	require.NoError(t, err)
	open, err := svc.Create(context.Background(), owner.ID, ProjectInput{
		Title: "Open", Description: "d", FeedbackAllowed: true,
	})
	require.NoError(t, err)

	visitor := &entity.Profile{CrossRef: "cr-bob", FriendlyID: "bob-x", Username: "bob"}
	require.NoError(t, profiles.Create(context.Background(), visitor))

	_, err = svc.AddFeedback(context.Background(), visitor.ID, closed.ID.Hex(), "great")
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	got, err := svc.AddFeedback(context.Background(), visitor.ID, open.ID.Hex(), "great")
	require.NoError(t, err)
	require.Len(t, got.Feedback, 1)
	assert.Equal(t, "great", got.Feedback[0].Comment)
}

func TestSuggestValidatesMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{
				"role":    "assistant",
				"content": "```json\n{\"project\": \"Taskboard\", \"improvements\": []}\n```",
			},
		})
	}))
	defer srv.Close()

	ai := assist.NewClient(srv.URL, "test-model", 5*time.Second)
	svc, _, owner := newProjectFixture(t, ai)

	created, err := svc.Create(context.Background(), owner.ID, ProjectInput{
		Title: "Taskboard", Description: "A kanban tool",
	})
	require.NoError(t, err)

	_, err = svc.Suggest(context.Background(), owner.ID, created.ID.Hex(), "banana", "")
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	// Refresh needs the previous concrete mode from the caller.
	_, err = svc.Suggest(context.Background(), owner.ID, created.ID.Hex(), assist.ModeRefresh, "")
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	out, err := svc.Suggest(context.Background(), owner.ID, created.ID.Hex(), assist.ModeRefresh, assist.ModeImprove)
	require.NoError(t, err)
	assert.True(t, json.Valid(out))
}

func TestSuggestOwnerOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "{}"},
		})
	}))
	defer srv.Close()

	ai := assist.NewClient(srv.URL, "test-model", 5*time.Second)
	svc, profiles, owner := newProjectFixture(t, ai)

	created, err := svc.Create(context.Background(), owner.ID, ProjectInput{
		Title: "Taskboard", Description: "d",
	})
	require.NoError(t, err)

	other := &entity.Profile{CrossRef: "cr-bob", FriendlyID: "bob-x", Username: "bob"}
	require.NoError(t, profiles.Create(context.Background(), other))

	_, err = svc.Suggest(context.Background(), other.ID, created.ID.Hex(), assist.ModeImprove, "")
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}
