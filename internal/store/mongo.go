package store

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// MongoUsers implements Users on a MongoDB collection. Per-user
// read-modify-write sequences are not isolated against concurrent requests
// for the same user; each individual write is a single-document operation.
type MongoUsers struct {
	col *mongo.Collection
	now func() time.Time
}

var _ Users = (*MongoUsers)(nil)

// NewMongoUsers returns a Users store backed by the given database.
func NewMongoUsers(db *mongo.Database) *MongoUsers {
	return &MongoUsers{
		col: db.Collection(usersCollection),
		now: time.Now,
	}
}

// EnsureIndexes creates the unique email index. Safe to call at every boot.
func (s *MongoUsers) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not ensure user indexes")
	}
	return nil
}

func (s *MongoUsers) Create(ctx context.Context, user *User) error {
	now := s.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.RefreshTokens == nil {
		user.RefreshTokens = []string{}
	}

	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}
	return nil
}

func (s *MongoUsers) GetByID(ctx context.Context, id string) (*User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

// findOne applies the active-only predicate to every lookup, the explicit
// replacement for the original schema-level pre-find hook.
func (s *MongoUsers) findOne(ctx context.Context, filter bson.M) (*User, error) {
	filter["active"] = true

	user := &User{}
	if err := s.col.FindOne(ctx, filter).Decode(user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not read user")
	}
	return user, nil
}

func (s *MongoUsers) List(ctx context.Context) ([]*User, error) {
	cursor, err := s.col.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not list users")
	}

	users := []*User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not decode users")
	}
	return users, nil
}

func (s *MongoUsers) Update(ctx context.Context, id string, upd UserUpdate) (*User, error) {
	set := bson.M{"updatedAt": s.now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = NormalizeEmail(*upd.Email)
	}
	if upd.Photo != nil {
		set["photo"] = *upd.Photo
	}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}

	user := &User{}
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "active": true},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not update user")
	}
	return user, nil
}

func (s *MongoUsers) SetRefreshTokens(ctx context.Context, id string, tokens []string) error {
	if tokens == nil {
		tokens = []string{}
	}

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "active": true},
		bson.M{"$set": bson.M{"refreshTokens": tokens, "updatedAt": s.now().UTC()}},
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not write refresh tokens")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUsers) Deactivate(ctx context.Context, id string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "active": true},
		bson.M{"$set": bson.M{
			"active":        false,
			"refreshTokens": []string{},
			"updatedAt":     s.now().UTC(),
		}},
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not deactivate user")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUsers) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete user")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
