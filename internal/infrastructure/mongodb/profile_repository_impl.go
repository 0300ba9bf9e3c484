package mongodb

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	"github.com/craftfolio/craftfolio-api/internal/domain/repository"
)

const profilesCollection = "profiles"

type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(profilesCollection)}
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Active = true
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (r *ProfileRepository) GetByCrossRef(ctx context.Context, crossRef string) (*entity.Profile, error) {
	return r.findOne(ctx, bson.M{"cross_ref": crossRef})
}

func (r *ProfileRepository) GetByFriendlyID(ctx context.Context, friendlyID string) (*entity.Profile, error) {
	return r.findOne(ctx, bson.M{"friendly_id": friendlyID})
}

func (r *ProfileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Profile, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProfileRepository) findOne(ctx context.Context, filter bson.M) (*entity.Profile, error) {
	var p entity.Profile
	err := r.coll.FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var out []entity.Profile
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProfileRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) SoftDeleteByCrossRef(ctx context.Context, crossRef string) error {
	now := time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"cross_ref": crossRef}, bson.M{
		"$set": bson.M{"active": false, "deleted_at": now, "updated_at": now},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) List(ctx context.Context, search string, page, limit int) ([]entity.Profile, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	filter := bson.M{}
	if search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"username": re},
			bson.M{"friendly_id": re},
			bson.M{"bio": re},
		}
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []entity.Profile
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ProfileRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"active": true})
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
