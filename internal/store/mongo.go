package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultMongoDatabase = "project_chat"

// MongoStore implements Store using MongoDB. Identifiers are ObjectID hex
// strings; foreign keys are stored as those strings, not as ObjectIDs.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	if dbName == "" {
		dbName = defaultMongoDatabase
	}

	s := &MongoStore{client: client, db: client.Database(dbName)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionProjects: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		CollectionChats: {
			{Keys: bson.D{{Key: "project_id", Value: 1}}},
		},
		CollectionMessages: {
			{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "_id", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", name, err)
		}
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) users() *mongo.Collection    { return s.db.Collection(CollectionUsers) }
func (s *MongoStore) projects() *mongo.Collection { return s.db.Collection(CollectionProjects) }
func (s *MongoStore) chats() *mongo.Collection    { return s.db.Collection(CollectionChats) }
func (s *MongoStore) messages() *mongo.Collection { return s.db.Collection(CollectionMessages) }

// --- MongoDB document types ---

type userDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	AvatarURL *string       `bson:"avatar_url"`
}

type projectDoc struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	UserID      string        `bson:"user_id"`
	Name        string        `bson:"name"`
	Description *string       `bson:"description"`
}

func (d projectDoc) toProject() Project {
	return Project{ID: ProjectID(d.ID.Hex()), UserID: UserID(d.UserID), Name: d.Name, Description: d.Description}
}

type chatDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	ProjectID string        `bson:"project_id"`
	Title     string        `bson:"title"`
}

func (d chatDoc) toChat() Chat {
	return Chat{ID: ChatID(d.ID.Hex()), ProjectID: ProjectID(d.ProjectID), Title: d.Title}
}

type messageDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	ChatID    string        `bson:"chat_id"`
	Role      string        `bson:"role"`
	Content   string        `bson:"content"`
	CreatedAt *time.Time    `bson:"created_at,omitempty"`
}

func (d messageDoc) toMessage() Message {
	msg := Message{ID: MessageID(d.ID.Hex()), ChatID: ChatID(d.ChatID), Role: d.Role, Content: d.Content}
	if d.CreatedAt != nil {
		t := d.CreatedAt.UTC()
		msg.CreatedAt = &t
	}
	return msg
}

func (s *MongoStore) ValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

// UpsertUserByEmail inserts or updates the user keyed by email. Two
// concurrent first logins can both try the insert; the loser hits the unique
// email index and is retried once, which then matches the winner's document.
func (s *MongoStore) UpsertUserByEmail(ctx context.Context, user User) (UserID, error) {
	var doc userDoc
	err := retryOnDuplicateKey(func() error {
		return s.users().FindOneAndUpdate(ctx,
			bson.M{"email": user.Email},
			bson.M{"$set": bson.M{"name": user.Name, "avatar_url": user.AvatarURL}},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&doc)
	})
	if err != nil {
		return "", fmt.Errorf("failed to upsert user: %w", err)
	}
	return UserID(doc.ID.Hex()), nil
}

func retryOnDuplicateKey(op func() error) error {
	err := op()
	if mongo.IsDuplicateKeyError(err) {
		err = op()
	}
	return err
}

func (s *MongoStore) GetUser(ctx context.Context, id UserID) (*User, error) {
	oid, err := bson.ObjectIDFromHex(string(id))
	if err != nil {
		return nil, nil
	}
	var doc userDoc
	if err := s.users().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &User{ID: UserID(doc.ID.Hex()), Name: doc.Name, Email: doc.Email, AvatarURL: doc.AvatarURL}, nil
}

func (s *MongoStore) CreateProject(ctx context.Context, project Project) (ProjectID, error) {
	doc := projectDoc{
		ID:          bson.NewObjectID(),
		UserID:      string(project.UserID),
		Name:        project.Name,
		Description: project.Description,
	}
	if _, err := s.projects().InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert project: %w", err)
	}
	return ProjectID(doc.ID.Hex()), nil
}

func (s *MongoStore) GetProject(ctx context.Context, id ProjectID) (*Project, error) {
	oid, err := bson.ObjectIDFromHex(string(id))
	if err != nil {
		return nil, nil
	}
	var doc projectDoc
	if err := s.projects().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	project := doc.toProject()
	return &project, nil
}

func (s *MongoStore) ListProjectsByUser(ctx context.Context, userID UserID) ([]Project, error) {
	var docs []projectDoc
	if err := s.findAll(ctx, s.projects(), bson.M{"user_id": string(userID)}, &docs); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	projects := make([]Project, 0, len(docs))
	for _, d := range docs {
		projects = append(projects, d.toProject())
	}
	return projects, nil
}

func (s *MongoStore) CreateChat(ctx context.Context, chat Chat) (ChatID, error) {
	doc := chatDoc{ID: bson.NewObjectID(), ProjectID: string(chat.ProjectID), Title: chat.Title}
	if _, err := s.chats().InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert chat: %w", err)
	}
	return ChatID(doc.ID.Hex()), nil
}

func (s *MongoStore) GetChat(ctx context.Context, id ChatID) (*Chat, error) {
	oid, err := bson.ObjectIDFromHex(string(id))
	if err != nil {
		return nil, nil
	}
	var doc chatDoc
	if err := s.chats().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	chat := doc.toChat()
	return &chat, nil
}

func (s *MongoStore) ListChatsByProject(ctx context.Context, projectID ProjectID) ([]Chat, error) {
	var docs []chatDoc
	if err := s.findAll(ctx, s.chats(), bson.M{"project_id": string(projectID)}, &docs); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	chats := make([]Chat, 0, len(docs))
	for _, d := range docs {
		chats = append(chats, d.toChat())
	}
	return chats, nil
}

func (s *MongoStore) CreateMessage(ctx context.Context, msg Message) (MessageID, error) {
	createdAt := time.Now().UTC()
	if msg.CreatedAt != nil {
		createdAt = msg.CreatedAt.UTC()
	}
	doc := messageDoc{
		ID:        bson.NewObjectID(),
		ChatID:    string(msg.ChatID),
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: &createdAt,
	}
	if _, err := s.messages().InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert message: %w", err)
	}
	return MessageID(doc.ID.Hex()), nil
}

func (s *MongoStore) ListMessagesByChat(ctx context.Context, chatID ChatID) ([]Message, error) {
	var docs []messageDoc
	if err := s.findAll(ctx, s.messages(), bson.M{"chat_id": string(chatID)}, &docs); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	messages := make([]Message, 0, len(docs))
	for _, d := range docs {
		messages = append(messages, d.toMessage())
	}
	return messages, nil
}

// findAll decodes every match in _id order, which follows insertion order for
// ObjectIDs generated by this process.
func (s *MongoStore) findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) error {
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

func (s *MongoStore) Info(ctx context.Context) (Info, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return Info{}, fmt.Errorf("failed to list collections: %w", err)
	}
	return Info{Driver: DriverMongo, Name: s.db.Name(), Collections: names}, nil
}
