package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	"github.com/craftfolio/craftfolio-api/internal/domain/repository"
)

const postsCollection = "posts"

type PostRepository struct {
	coll *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{coll: db.Collection(postsCollection)}
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	if p.Comments == nil {
		p.Comments = []entity.Comment{}
	}
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Post, error) {
	var p entity.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepository) List(ctx context.Context, page, limit int) ([]entity.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []entity.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostRepository) ListByProfile(ctx context.Context, profileID primitive.ObjectID) ([]entity.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"profile_id": profileID}, opts)
	if err != nil {
		return nil, err
	}
	var out []entity.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleLike flips membership in the like set with a single aggregation
// pipeline update, so two concurrent toggles from the same profile can never
// double-count: each one observes and rewrites the array atomically.
func (r *PostRepository) ToggleLike(ctx context.Context, postID, profileID primitive.ObjectID) (bool, int, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"likes": bson.M{
				"$cond": bson.A{
					bson.M{"$in": bson.A{profileID, "$likes"}},
					bson.M{"$setDifference": bson.A{"$likes", bson.A{profileID}}},
					bson.M{"$concatArrays": bson.A{"$likes", bson.A{profileID}}},
				},
			},
			"updated_at": time.Now().UTC(),
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated entity.Post
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": postID}, pipeline, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, 0, repository.ErrNotFound
	}
	if err != nil {
		return false, 0, err
	}
	return updated.LikedBy(profileID), len(updated.Likes), nil
}

func (r *PostRepository) AddComment(ctx context.Context, postID primitive.ObjectID, c entity.Comment) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$pull": bson.M{"comments": bson.M{"_id": commentID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

var _ repository.PostRepository = (*PostRepository)(nil)
