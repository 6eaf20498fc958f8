// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package mongodb implements the credential store on a MongoDB collection.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"codeberg.org/oliverandrich/passreset/internal/models"
	"codeberg.org/oliverandrich/passreset/internal/password"
	"codeberg.org/oliverandrich/passreset/internal/repository"
	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// UsersCollection is the collection holding user documents.
const UsersCollection = "users"

const (
	pingAttempts = 5
	pingBackoff  = 200 * time.Millisecond
)

// userDocument is the persisted shape of a user.
type userDocument struct {
	ID       bson.ObjectID `bson:"_id,omitempty"`
	Email    string        `bson:"email"`
	Password string        `bson:"password"`
}

func (d *userDocument) toModel() *models.User {
	created := d.ID.Timestamp().UTC()
	return &models.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

// Store is a UserStore backed by MongoDB.
// The connection is established on first use and shared afterwards.
type Store struct {
	uri      string
	database string

	mu     sync.Mutex
	client *mongo.Client
	users  *mongo.Collection
}

var _ repository.UserStore = (*Store)(nil)

// New creates a Store. No connection is made until Connect or the first operation.
func New(uri, database string) *Store {
	return &Store{uri: uri, database: database}
}

// Connect opens the client, pings the primary and ensures the email index.
// It is safe to call repeatedly; once connected it returns immediately.
func (s *Store) Connect(ctx context.Context) error {
	_, err := s.collection(ctx)
	return err
}

func (s *Store) collection(ctx context.Context) (*mongo.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.users != nil {
		return s.users, nil
	}

	client, err := mongo.Connect(options.Client().ApplyURI(s.uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", repository.ErrPersistence, err)
	}

	backoff := retry.WithMaxRetries(pingAttempts, retry.NewExponential(pingBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			slog.Debug("mongodb_ping_failed", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("%w: ping: %w", repository.ErrPersistence, err)
	}

	users := client.Database(s.database).Collection(UsersCollection)
	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("%w: create email index: %w", repository.ErrPersistence, err)
	}

	s.client = client
	s.users = users
	slog.Info("mongodb_connected", "database", s.database)
	return users, nil
}

// Close disconnects the client if one was opened.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	s.users = nil
	return err
}

// GetUserByID retrieves a user by its ObjectID hex string.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *Store) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	users, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	var doc userDocument
	if err := users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, wrapError(err)
	}
	return doc.toModel(), nil
}

// CreateUser hashes the password and inserts a new user document.
func (s *Store) CreateUser(ctx context.Context, email, rawPassword string) (*models.User, error) {
	hash, err := password.Hash(rawPassword)
	if err != nil {
		return nil, err
	}

	users, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	doc := userDocument{ID: bson.NewObjectID(), Email: email, Password: hash}
	if _, err := users.InsertOne(ctx, doc); err != nil {
		return nil, wrapError(err)
	}
	return doc.toModel(), nil
}

// UpdateUserPassword replaces the stored hash and returns the updated user.
func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	users, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	var doc userDocument
	err = users.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "password", Value: passwordHash}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, wrapError(err)
	}
	return doc.toModel(), nil
}

// wrapError converts driver errors to repository errors
func wrapError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicateEmail
	}
	return fmt.Errorf("%w: %w", repository.ErrPersistence, err)
}
