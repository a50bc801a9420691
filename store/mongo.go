// Package store file: store/mongo.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go-live-polls/logger"
	"go-live-polls/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore keeps sessions and polls in two MongoDB collections.
type MongoStore struct {
	client   *mongo.Client
	sessions *mongo.Collection
	polls    *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// OpenMongoStore connects to uri, pings the primary and ensures indexes exist.
func OpenMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:   client,
		sessions: db.Collection("sessions"),
		polls:    db.Collection("polls"),
	}

	_, err = s.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sessionCode", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create sessionCode index: %w", err)
	}
	_, err = s.polls.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "accessCode", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create accessCode index: %w", err)
	}

	logger.Info.Printf("[MongoStore] Connected to database %s", database)
	return s, nil
}

// FindSessionByCode returns the session with the given code.
func (s *MongoStore) FindSessionByCode(ctx context.Context, code string) (*models.Session, error) {
	var sess models.Session
	err := s.sessions.FindOne(ctx, bson.M{"sessionCode": code}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session %s: %w", code, err)
	}
	if sess.PollIDs == nil {
		sess.PollIDs = []string{}
	}
	return &sess, nil
}

// CreateSession inserts a session document; the unique index rejects duplicates.
func (s *MongoStore) CreateSession(ctx context.Context, code string) (*models.Session, error) {
	sess := &models.Session{ID: uuid.NewString(), Code: code, PollIDs: []string{}}
	if _, err := s.sessions.InsertOne(ctx, sess); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateSessionCode
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// FindPollByID returns the poll document with the given id.
func (s *MongoStore) FindPollByID(ctx context.Context, id string) (*models.Poll, error) {
	var p models.Poll
	err := s.polls.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find poll %s: %w", id, err)
	}
	if p.Results == nil {
		p.Results = map[string]int{}
	}
	return &p, nil
}

// SavePoll replaces the poll document, inserting it when absent.
func (s *MongoStore) SavePoll(ctx context.Context, poll *models.Poll) error {
	doc := poll.Clone()
	_, err := s.polls.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save poll %s: %w", poll.ID, err)
	}
	return nil
}

// AppendPollToSession adds pollID to the session's poll set with $addToSet.
func (s *MongoStore) AppendPollToSession(ctx context.Context, sessionID, pollID string) error {
	res, err := s.sessions.UpdateOne(ctx,
		bson.M{"_id": sessionID},
		bson.M{"$addToSet": bson.M{"polls": pollID}},
	)
	if err != nil {
		return fmt.Errorf("append poll %s to session %s: %w", pollID, sessionID, err)
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListSessionPolls loads the session's polls in the order of its poll set.
func (s *MongoStore) ListSessionPolls(ctx context.Context, sessionID string) ([]*models.Poll, error) {
	var sess models.Session
	err := s.sessions.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session %s: %w", sessionID, err)
	}
	if len(sess.PollIDs) == 0 {
		return []*models.Poll{}, nil
	}

	cur, err := s.polls.Find(ctx, bson.M{"_id": bson.M{"$in": sess.PollIDs}})
	if err != nil {
		return nil, fmt.Errorf("find polls of session %s: %w", sessionID, err)
	}
	var found []*models.Poll
	if err := cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode polls of session %s: %w", sessionID, err)
	}

	byID := make(map[string]*models.Poll, len(found))
	for _, p := range found {
		if p.Results == nil {
			p.Results = map[string]int{}
		}
		byID[p.ID] = p
	}
	polls := make([]*models.Poll, 0, len(found))
	for _, id := range sess.PollIDs {
		if p, ok := byID[id]; ok {
			polls = append(polls, p)
		}
	}
	return polls, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
