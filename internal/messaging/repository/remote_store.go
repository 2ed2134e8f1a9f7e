package repository

import (
	"context"
	"errors"

	"school_messaging_service/internal/messaging/domain"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// remoteStore 遠端權威資料: conversations/messages 存 mongo,
// user directory 存 postgres.
type remoteStore struct {
	convColl    *mongo.Collection
	msgColl     *mongo.Collection
	counterColl *mongo.Collection
	users       *pgxpool.Pool
}

// NewRemoteStore create the authoritative store backend
func NewRemoteStore(db *mongo.Database, users *pgxpool.Pool) Store {
	return &remoteStore{
		convColl:    db.Collection("conversations"),
		msgColl:     db.Collection("messages"),
		counterColl: db.Collection("counters"),
		users:       users,
	}
}

func (r *remoteStore) ListConversationsForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	filter := bson.M{"participants.user_id": userID}
	opts := options.Find().SetSort(bson.M{"last_message_timestamp": -1})
	cur, err := r.convColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var convs []domain.Conversation
	if err := cur.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *remoteStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.convColl.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *remoteStore) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	_, err := r.convColl.InsertOne(ctx, conv)
	return err
}

func (r *remoteStore) UpdateConversation(ctx context.Context, conv *domain.Conversation) error {
	filter := bson.M{"_id": conv.ID}
	update := bson.M{"$set": conv}
	_, err := r.convColl.UpdateOne(ctx, filter, update)
	return err
}

func (r *remoteStore) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	filter := bson.M{"conversation_id": conversationID}
	opts := options.Find().SetSort(bson.M{"_id": 1})
	cur, err := r.msgColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var msgs []domain.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *remoteStore) GetMessage(ctx context.Context, messageID int64) (*domain.Message, error) {
	var msg domain.Message
	err := r.msgColl.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *remoteStore) CreateMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == 0 {
		id, err := r.nextSequence(ctx, "message_id")
		if err != nil {
			return err
		}
		msg.ID = id
	}
	_, err := r.msgColl.InsertOne(ctx, msg)
	return err
}

func (r *remoteStore) UpdateMessage(ctx context.Context, msg *domain.Message) error {
	filter := bson.M{"_id": msg.ID}
	update := bson.M{"$set": bson.M{
		"read":      msg.Read,
		"reactions": msg.Reactions,
	}}
	res, err := r.msgColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *remoteStore) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"receiver_id":     readerID,
		"read":            false,
	}
	res, err := r.msgColl.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	_, err = r.convColl.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{"unread_count": 0}})
	if err != nil {
		return int(res.ModifiedCount), err
	}
	return int(res.ModifiedCount), nil
}

func (r *remoteStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.users.Query(ctx, "SELECT user_id, name, role FROM users ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// nextSequence message ids must be unique and monotonically increasing
// within the store; a findOneAndUpdate $inc on the counters collection
// keeps them monotone across service instances.
func (r *remoteStore) nextSequence(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var counter struct {
		Value int64 `bson:"value"`
	}
	err := r.counterColl.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Value, nil
}
