package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/platformlab/identity-service/internal/core/domain"
)

const (
	userCollection = "users"
	roleCollection = "roles"
)

// CredentialStore implements ports.CredentialStore on MongoDB. Users embed
// their role set as an array of role names; role documents are shared and
// joined in at read time, so a loaded User always carries materialized roles.
type CredentialStore struct {
	users *mongo.Collection
	roles *mongo.Collection
}

func NewCredentialStore(db *mongo.Database) *CredentialStore {
	return &CredentialStore{
		users: db.Collection(userCollection),
		roles: db.Collection(roleCollection),
	}
}

// EnsureIndexes creates the unique indexes the conflict semantics rely on:
// one username per user, one role document per role name.
func (s *CredentialStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}

	_, err = s.roles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("create role name index: %w", err)
	}
	return nil
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	Roles        []string           `bson:"roles"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

type roleDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	CreatedAt int64              `bson:"created_at"`
}

func (s *CredentialStore) SaveUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := userDoc{
		Name:         user.Name,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Roles:        user.RoleNames(),
		CreatedAt:    user.CreatedAt.Unix(),
		UpdatedAt:    user.UpdatedAt.Unix(),
	}
	if doc.Roles == nil {
		doc.Roles = []string{}
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, storeErr("insert user", err)
	}

	return s.FindUserByUsername(ctx, user.Username)
}

func (s *CredentialStore) SaveRole(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	doc := roleDoc{
		Name:      role.Name,
		CreatedAt: role.CreatedAt.Unix(),
	}

	res, err := s.roles.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrRoleExists
		}
		return nil, storeErr("insert role", err)
	}

	created := *role
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (s *CredentialStore) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr("find user", err)
	}
	return s.materialize(ctx, doc)
}

func (s *CredentialStore) FindRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	var doc roleDoc
	if err := s.roles.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrRoleNotFound
		}
		return nil, storeErr("find role", err)
	}
	return roleFromDoc(doc), nil
}

// AddRoleToUser pushes the role name with $addToSet: the update is atomic at
// the document level and inherently idempotent, so concurrent assignments to
// the same user cannot lose an update or duplicate a role.
func (s *CredentialStore) AddRoleToUser(ctx context.Context, username string, role domain.Role) error {
	update := bson.M{
		"$addToSet": bson.M{"roles": role.Name},
		"$set":      bson.M{"updated_at": time.Now().UTC().Unix()},
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"username": username}, update)
	if err != nil {
		return storeErr("add role to user", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *CredentialStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	cur, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, storeErr("decode user", err)
		}
		u, err := s.materialize(ctx, doc)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := cur.Err(); err != nil {
		return nil, storeErr("iterate users", err)
	}
	return users, nil
}

// materialize resolves the user's role-name array into full Role values.
func (s *CredentialStore) materialize(ctx context.Context, doc userDoc) (*domain.User, error) {
	user := &domain.User{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		Roles:        []domain.Role{},
		CreatedAt:    unixToTime(doc.CreatedAt),
		UpdatedAt:    unixToTime(doc.UpdatedAt),
	}
	if len(doc.Roles) == 0 {
		return user, nil
	}

	cur, err := s.roles.Find(ctx, bson.M{"name": bson.M{"$in": doc.Roles}})
	if err != nil {
		return nil, storeErr("load roles", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var rd roleDoc
		if err := cur.Decode(&rd); err != nil {
			return nil, storeErr("decode role", err)
		}
		user.Roles = append(user.Roles, *roleFromDoc(rd))
	}
	if err := cur.Err(); err != nil {
		return nil, storeErr("iterate roles", err)
	}
	return user, nil
}

func roleFromDoc(doc roleDoc) *domain.Role {
	return &domain.Role{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		CreatedAt: unixToTime(doc.CreatedAt),
	}
}

// storeErr tags an infrastructure failure with the sentinel the core
// propagates, keeping the underlying cause in the message.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
