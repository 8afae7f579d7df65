package contact

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/simp-lee/kontakt/internal/domain"
	"github.com/simp-lee/kontakt/internal/pkg"
	"github.com/simp-lee/kontakt/internal/query"
)

// contactDocument is the stored shape of a contact. The identifier lives in
// contact_id as a string; MongoDB keeps its own generated _id.
type contactDocument struct {
	ContactID string    `bson:"contact_id"`
	CreatedOn time.Time `bson:"created_on"`
	UpdatedOn time.Time `bson:"updated_on"`
	Version   int64     `bson:"version"`

	EmailAddress *string `bson:"email_address"`
	PhoneNumber  *string `bson:"phone_number"`

	FirstName string `bson:"first_name"`
	LastName  string `bson:"last_name"`

	Birthdate *time.Time `bson:"birthdate"`
	Gender    *string    `bson:"gender"`

	Website *string `bson:"website"`
}

func toDocument(c *domain.Contact) contactDocument {
	return contactDocument{
		ContactID:    c.ID.String(),
		CreatedOn:    c.CreatedOn,
		UpdatedOn:    c.UpdatedOn,
		Version:      c.Version,
		EmailAddress: c.EmailAddress,
		PhoneNumber:  c.PhoneNumber,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Birthdate:    c.Birthdate,
		Gender:       c.Gender,
		Website:      c.Website,
	}
}

func (d contactDocument) toContact() (domain.Contact, error) {
	id, err := uuid.Parse(d.ContactID)
	if err != nil {
		return domain.Contact{}, err
	}
	c := domain.Contact{
		ID: id,
		Audit: domain.Audit{
			CreatedOn: d.CreatedOn.UTC(),
			UpdatedOn: d.UpdatedOn.UTC(),
			Version:   d.Version,
		},
		EmailAddress: d.EmailAddress,
		PhoneNumber:  d.PhoneNumber,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Gender:       d.Gender,
		Website:      d.Website,
	}
	if d.Birthdate != nil {
		b := d.Birthdate.UTC()
		c.Birthdate = &b
	}
	return c, nil
}

// mongoContactRepository implements domain.ContactRepository on a MongoDB collection.
type mongoContactRepository struct {
	coll *mongo.Collection
}

// NewMongoContactRepository creates a ContactRepository backed by coll.
func NewMongoContactRepository(coll *mongo.Collection) domain.ContactRepository {
	return &mongoContactRepository{coll: coll}
}

// EnsureIndexes creates the unique contact_id index and the updated_on index.
// It is idempotent.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: domain.FieldContactID, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: domain.FieldUpdatedOn, Value: 1}},
		},
	})
	if err != nil {
		return mapMongoError(err)
	}
	return nil
}

func mongoByID(id uuid.UUID) bson.D {
	return bson.D{{Key: domain.FieldContactID, Value: id.String()}}
}

// Create inserts a new contact document.
func (r *mongoContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	if _, err := r.coll.InsertOne(ctx, toDocument(contact)); err != nil {
		return mapMongoError(err)
	}
	return nil
}

// GetByID retrieves a contact by its identifier.
func (r *mongoContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	var doc contactDocument
	if err := r.coll.FindOne(ctx, mongoByID(id)).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	return decodeContact(doc)
}

// Update reads the contact, applies the mutation and replaces the stored
// document. Concurrent updates are last-writer-wins.
func (r *mongoContactRepository) Update(ctx context.Context, id uuid.UUID, apply func(*domain.Contact)) (*domain.Contact, error) {
	contact, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(contact)
	contact.ID = id

	res, err := r.coll.ReplaceOne(ctx, mongoByID(id), toDocument(contact))
	if err != nil {
		return nil, mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.NewAppError(domain.CodeNotFound, "contact not found", nil)
	}
	return contact, nil
}

// Delete removes a contact by identifier and returns it as it was stored.
func (r *mongoContactRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.Contact, error) {
	var doc contactDocument
	if err := r.coll.FindOneAndDelete(ctx, mongoByID(id)).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	return decodeContact(doc)
}

// Count returns the number of contacts matching filter.
func (r *mongoContactRepository) Count(ctx context.Context, filter query.Predicate) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, pkg.MongoFilter(filter))
	if err != nil {
		return 0, mapMongoError(err)
	}
	return n, nil
}

// Find returns the contacts matching q, sorted and windowed.
func (r *mongoContactRepository) Find(ctx context.Context, q query.Query) ([]domain.Contact, error) {
	opts := options.Find()
	if sort := pkg.MongoSort(q.Sort); sort != nil {
		opts.SetSort(sort)
	}
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := r.coll.Find(ctx, pkg.MongoFilter(q.Filter), opts)
	if err != nil {
		return nil, mapMongoError(err)
	}
	var docs []contactDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapMongoError(err)
	}

	contacts := make([]domain.Contact, 0, len(docs))
	for _, doc := range docs {
		c, err := decodeContact(doc)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, nil
}

// Ping checks that the MongoDB deployment is reachable.
func (r *mongoContactRepository) Ping(ctx context.Context) error {
	if err := r.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return domain.NewAppError(domain.CodeUnavailable, "database unreachable", err)
	}
	return nil
}

func decodeContact(doc contactDocument) (*domain.Contact, error) {
	c, err := doc.toContact()
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "corrupt contact document", err)
	}
	return &c, nil
}

// mapMongoError converts MongoDB driver errors to domain errors.
func mapMongoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.NewAppError(domain.CodeNotFound, "contact not found", err)
	}
	if mongo.IsDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "contact already exists", err)
	}
	if errors.Is(err, context.Canceled) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return domain.NewAppError(domain.CodeUnavailable, "database unavailable", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}
