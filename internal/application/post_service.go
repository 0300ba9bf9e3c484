package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	repo "github.com/craftfolio/craftfolio-api/internal/domain/repository"
	"github.com/craftfolio/craftfolio-api/pkg/apperr"
	"github.com/craftfolio/craftfolio-api/pkg/uploader"
)

// PostService owns the feed: posts, likes, and comments.
type PostService struct {
	Posts    repo.PostRepository
	Profiles repo.ProfileRepository
	Uploader uploader.Uploader // optional
	Logger   *logrus.Logger
}

func NewPostService(posts repo.PostRepository, profiles repo.ProfileRepository, up uploader.Uploader, logger *logrus.Logger) *PostService {
	return &PostService{Posts: posts, Profiles: profiles, Uploader: up, Logger: logger}
}

// OwnerView is the denormalized slice of a profile attached to posts and
// comments so the feed renders without extra lookups.
type OwnerView struct {
	ProfileID      string `json:"profile_id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Profession     string `json:"profession,omitempty"`
	FriendlyID     string `json:"friendly_id"`
}

type CommentView struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Author    OwnerView `json:"author"`
}

type PostView struct {
	ID          string        `json:"id"`
	Content     string        `json:"content,omitempty"`
	Image       string        `json:"image,omitempty"`
	Owner       OwnerView     `json:"owner"`
	LikesCount  int           `json:"likes_count"`
	LikedByUser bool          `json:"liked_by_user"`
	Comments    []CommentView `json:"comments"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type FeedResult struct {
	Posts       []PostView `json:"posts"`
	TotalPages  int        `json:"total_pages"`
	CurrentPage int        `json:"current_page"`
}

type CreatePostInput struct {
	Content string
	Image   string // raw URL, re-hosted
}

func (s *PostService) Create(ctx context.Context, profileID primitive.ObjectID, in CreatePostInput) (*PostView, error) {
	if in.Content == "" && in.Image == "" {
		return nil, apperr.New(apperr.Validation, "Post needs content or an image")
	}
	image := in.Image
	if image != "" && s.Uploader != nil {
		hosted, err := s.Uploader.Upload(ctx, image, "posts")
		if err != nil {
			return nil, err
		}
		image = hosted
	}
	post := &entity.Post{ProfileID: profileID, Content: in.Content, Image: image}
	if err := s.Posts.Create(ctx, post); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "post creation failed", err)
	}
	return s.render(ctx, post, &profileID)
}

// Feed returns a page of posts, newest first, with like state computed for
// the viewer (nil viewer means anonymous: liked_by_user is always false).
func (s *PostService) Feed(ctx context.Context, viewer *primitive.ObjectID, page, limit int) (*FeedResult, error) {
	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	posts, total, err := s.Posts.List(ctx, page, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "feed lookup failed", err)
	}
	views, err := s.renderMany(ctx, posts, viewer)
	if err != nil {
		return nil, err
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &FeedResult{Posts: views, TotalPages: totalPages, CurrentPage: page}, nil
}

// UserPosts lists one user's posts by friendly id.
func (s *PostService) UserPosts(ctx context.Context, friendlyID string, viewer *primitive.ObjectID) ([]PostView, error) {
	owner, err := s.Profiles.GetByFriendlyID(ctx, friendlyID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "post lookup failed", err)
	}
	posts, err := s.Posts.ListByProfile(ctx, owner.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "post lookup failed", err)
	}
	return s.renderMany(ctx, posts, viewer)
}

type LikeResult struct {
	PostID     string `json:"post_id"`
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likes_count"`
}

// ToggleLike flips the caller's like on a post. The repository performs the
// flip as one atomic document update, so repeated or concurrent toggles
// settle on set semantics rather than a counter drift.
func (s *PostService) ToggleLike(ctx context.Context, profileID primitive.ObjectID, postID string) (*LikeResult, error) {
	oid, err := parseObjectID(postID)
	if err != nil {
		return nil, err
	}
	liked, likes, err := s.Posts.ToggleLike(ctx, oid, profileID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Post not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "like toggle failed", err)
	}
	return &LikeResult{PostID: postID, Liked: liked, LikesCount: likes}, nil
}

// AddComment appends a comment and returns the refreshed post view.
func (s *PostService) AddComment(ctx context.Context, profileID primitive.ObjectID, postID, text string) (*PostView, error) {
	oid, err := parseObjectID(postID)
	if err != nil {
		return nil, err
	}
	comment := entity.Comment{
		ID:        primitive.NewObjectID(),
		ProfileID: profileID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Posts.AddComment(ctx, oid, comment); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Post not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "comment failed", err)
	}
	post, err := s.Posts.GetByID(ctx, oid)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "comment failed", err)
	}
	return s.render(ctx, post, &profileID)
}

// DeleteComment removes a comment; comment author only. Post owners go
// through moderation, which has its own audit trail.
func (s *PostService) DeleteComment(ctx context.Context, actor primitive.ObjectID, postID, commentID string) error {
	poid, err := parseObjectID(postID)
	if err != nil {
		return err
	}
	coid, err := parseObjectID(commentID)
	if err != nil {
		return err
	}
	post, err := s.Posts.GetByID(ctx, poid)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.New(apperr.NotFound, "Post not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "comment deletion failed", err)
	}

	var owner *primitive.ObjectID
	for i := range post.Comments {
		if post.Comments[i].ID == coid {
			owner = &post.Comments[i].ProfileID
			break
		}
	}
	if owner == nil {
		return apperr.New(apperr.NotFound, "Comment not found")
	}
	if *owner != actor {
		return apperr.New(apperr.Forbidden, "You cannot delete this comment")
	}
	if err := s.Posts.RemoveComment(ctx, poid, coid); err != nil {
		return apperr.Wrap(apperr.Internal, "comment deletion failed", err)
	}
	return nil
}

// Delete removes a post; owner only.
func (s *PostService) Delete(ctx context.Context, actor primitive.ObjectID, postID string) error {
	oid, err := parseObjectID(postID)
	if err != nil {
		return err
	}
	post, err := s.Posts.GetByID(ctx, oid)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.New(apperr.NotFound, "Post not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "post deletion failed", err)
	}
	if post.ProfileID != actor {
		return apperr.New(apperr.Forbidden, "You do not own this post")
	}
	if err := s.Posts.Delete(ctx, oid); err != nil {
		return apperr.Wrap(apperr.Internal, "post deletion failed", err)
	}
	return nil
}

func (s *PostService) render(ctx context.Context, post *entity.Post, viewer *primitive.ObjectID) (*PostView, error) {
	views, err := s.renderMany(ctx, []entity.Post{*post}, viewer)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// renderMany batch-loads every profile referenced by the posts (owners and
// comment authors) in one query and joins the display fields in memory.
func (s *PostService) renderMany(ctx context.Context, posts []entity.Post, viewer *primitive.ObjectID) ([]PostView, error) {
	idSet := map[primitive.ObjectID]struct{}{}
	for i := range posts {
		idSet[posts[i].ProfileID] = struct{}{}
		for j := range posts[i].Comments {
			idSet[posts[i].Comments[j].ProfileID] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	profiles, err := s.Profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "post lookup failed", err)
	}
	byID := make(map[primitive.ObjectID]OwnerView, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		byID[p.ID] = OwnerView{
			ProfileID:      p.ID.Hex(),
			Username:       p.Username,
			ProfilePicture: p.ProfilePicture,
			Profession:     p.Profession,
			FriendlyID:     p.FriendlyID,
		}
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		liked := false
		if viewer != nil {
			liked = p.LikedBy(*viewer)
		}
		comments := make([]CommentView, 0, len(p.Comments))
		for j := range p.Comments {
			c := &p.Comments[j]
			comments = append(comments, CommentView{
				ID:        c.ID.Hex(),
				Text:      c.Text,
				CreatedAt: c.CreatedAt,
				Author:    byID[c.ProfileID],
			})
		}
		views = append(views, PostView{
			ID:          p.ID.Hex(),
			Content:     p.Content,
			Image:       p.Image,
			Owner:       byID[p.ProfileID],
			LikesCount:  len(p.Likes),
			LikedByUser: liked,
			Comments:    comments,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return views, nil
}

func parseObjectID(hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.Validation, "Invalid id format")
	}
	return oid, nil
}
