package application

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	repo "github.com/craftfolio/craftfolio-api/internal/domain/repository"
	"github.com/craftfolio/craftfolio-api/pkg/apperr"
	"github.com/craftfolio/craftfolio-api/pkg/assist"
	"github.com/craftfolio/craftfolio-api/pkg/uploader"
)

// ProjectService owns portfolio projects and the AI suggestion flow.
type ProjectService struct {
	Projects repo.ProjectRepository
	Profiles repo.ProfileRepository
	Uploader uploader.Uploader // optional
	Assist   *assist.Client    // optional; nil disables suggestions
	Logger   *logrus.Logger
}

func NewProjectService(projects repo.ProjectRepository, profiles repo.ProfileRepository, up uploader.Uploader, ai *assist.Client, logger *logrus.Logger) *ProjectService {
	return &ProjectService{
		Projects: projects,
		Profiles: profiles,
		Uploader: up,
		Assist:   ai,
		Logger:   logger,
	}
}

type ProjectInput struct {
	Title           string
	Description     string
	URL             string
	MediaURLs       []string // raw URLs, re-hosted
	Thumbnail       string   // raw URL, re-hosted
	Tags            []string
	FeedbackAllowed bool
}

func (s *ProjectService) Create(ctx context.Context, profileID primitive.ObjectID, in ProjectInput) (*entity.Project, error) {
	media, thumb, err := s.rehostMedia(ctx, in.MediaURLs, in.Thumbnail)
	if err != nil {
		return nil, err
	}
	p := &entity.Project{
		ProfileID:       profileID,
		Title:           in.Title,
		Description:     in.Description,
		URL:             in.URL,
		Media:           media,
		Thumbnail:       thumb,
		Tags:            in.Tags,
		FeedbackAllowed: in.FeedbackAllowed,
	}
	if err := s.Projects.Create(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "project creation failed", err)
	}
	return p, nil
}

// ListByFriendlyID returns a user's projects for the public portfolio page.
func (s *ProjectService) ListByFriendlyID(ctx context.Context, friendlyID string) ([]entity.Project, error) {
	owner, err := s.Profiles.GetByFriendlyID(ctx, friendlyID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "project lookup failed", err)
	}
	return s.listByProfile(ctx, owner.ID)
}

func (s *ProjectService) ListOwn(ctx context.Context, profileID primitive.ObjectID) ([]entity.Project, error) {
	return s.listByProfile(ctx, profileID)
}

func (s *ProjectService) listByProfile(ctx context.Context, profileID primitive.ObjectID) ([]entity.Project, error) {
	projects, err := s.Projects.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "project lookup failed", err)
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, projectID string) (*entity.Project, error) {
	oid, err := parseObjectID(projectID)
	if err != nil {
		return nil, err
	}
	p, err := s.Projects.GetByID(ctx, oid)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Project not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "project lookup failed", err)
	}
	return p, nil
}

type UpdateProjectInput struct {
	Title           *string
	Description     *string
	URL             *string
	MediaURLs       *[]string
	Thumbnail       *string
	Tags            *[]string
	FeedbackAllowed *bool
}

// Update applies a partial update; owner only.
func (s *ProjectService) Update(ctx context.Context, actor primitive.ObjectID, projectID string, in UpdateProjectInput) (*entity.Project, error) {
	p, err := s.owned(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.URL != nil {
		p.URL = *in.URL
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}
	if in.FeedbackAllowed != nil {
		p.FeedbackAllowed = *in.FeedbackAllowed
	}
	if in.MediaURLs != nil {
		media, _, err := s.rehostMedia(ctx, *in.MediaURLs, "")
		if err != nil {
			return nil, err
		}
		p.Media = media
	}
	if in.Thumbnail != nil && *in.Thumbnail != p.Thumbnail {
		_, thumb, err := s.rehostMedia(ctx, nil, *in.Thumbnail)
		if err != nil {
			return nil, err
		}
		p.Thumbnail = thumb
	}

	if err := s.Projects.Update(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "project update failed", err)
	}
	return p, nil
}

// Delete removes a project; owner only.
func (s *ProjectService) Delete(ctx context.Context, actor primitive.ObjectID, projectID string) error {
	p, err := s.owned(ctx, actor, projectID)
	if err != nil {
		return err
	}
	if err := s.Projects.Delete(ctx, p.ID); err != nil {
		return apperr.Wrap(apperr.Internal, "project deletion failed", err)
	}
	return nil
}

// AddFeedback records a visitor note on a project that opted in to feedback.
func (s *ProjectService) AddFeedback(ctx context.Context, visitor primitive.ObjectID, projectID, comment string) (*entity.Project, error) {
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !p.FeedbackAllowed {
		return nil, apperr.New(apperr.Forbidden, "This project does not accept feedback")
	}
	p.Feedback = append(p.Feedback, entity.Feedback{
		ProfileID: visitor,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	})
	if err := s.Projects.Update(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "feedback failed", err)
	}
	return p, nil
}

// Suggest asks the AI endpoint for suggestions about one of the caller's
// projects. Mode "refresh" re-runs the caller-supplied lastMode, so the
// flow stays stateless on the server.
func (s *ProjectService) Suggest(ctx context.Context, actor primitive.ObjectID, projectID string, mode, lastMode assist.Mode) (json.RawMessage, error) {
	if s.Assist == nil {
		return nil, apperr.New(apperr.Internal, "AI suggestions are not configured")
	}

	if mode == assist.ModeRefresh {
		if !assist.ValidMode(lastMode) {
			return nil, apperr.New(apperr.Validation, "Refresh requires the previous mode")
		}
		mode = lastMode
	}
	if !assist.ValidMode(mode) {
		return nil, apperr.New(apperr.Validation, "Unknown suggestion mode")
	}

	p, err := s.owned(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	profession := ""
	if owner, perr := s.Profiles.GetByID(ctx, p.ProfileID); perr == nil {
		profession = owner.Profession
	}
	if profession == "" {
		profession = "professional"
	}

	prompt := assist.BuildPrompt(assist.ProjectInput{Title: p.Title, Description: p.Description}, profession, mode)
	out, err := s.Assist.Generate(ctx, prompt)
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"project_id": projectID, "mode": mode}).Error("suggestion generation failed")
		return nil, err
	}
	return out, nil
}

func (s *ProjectService) owned(ctx context.Context, actor primitive.ObjectID, projectID string) (*entity.Project, error) {
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.ProfileID != actor {
		return nil, apperr.New(apperr.Forbidden, "You do not own this project")
	}
	return p, nil
}

func (s *ProjectService) rehostMedia(ctx context.Context, urls []string, thumbnail string) ([]entity.Media, string, error) {
	media := make([]entity.Media, 0, len(urls))
	for _, raw := range urls {
		if raw == "" {
			continue
		}
		url := raw
		if s.Uploader != nil {
			hosted, err := s.Uploader.Upload(ctx, raw, "projects")
			if err != nil {
				return nil, "", err
			}
			url = hosted
		}
		media = append(media, entity.Media{URL: url})
	}
	thumb := thumbnail
	if thumb != "" && s.Uploader != nil {
		hosted, err := s.Uploader.Upload(ctx, thumb, "thumbnails")
		if err != nil {
			return nil, "", err
		}
		thumb = hosted
	}
	return media, thumb, nil
}
