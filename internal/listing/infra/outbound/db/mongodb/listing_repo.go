package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	infraMongo "github.com/davicafu/listingsearch/internal/infra/db/mongodb"
	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	"github.com/davicafu/listingsearch/shared/platform/persistence"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	listingsCollection = "listings"
	countersCollection = "counters"
)

// ListingRepoMongoDB implementa ListingRepository para MongoDB.
type ListingRepoMongoDB struct {
	client       *mongo.Client
	listingsColl *mongo.Collection
	outboxColl   *mongo.Collection
	countersColl *mongo.Collection
}

func NewListingRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*ListingRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	db := client.Database(dbName)
	return &ListingRepoMongoDB{
		client:       client,
		listingsColl: db.Collection(listingsCollection),
		outboxColl:   db.Collection(infraMongo.OutboxCollection),
		countersColl: db.Collection(countersCollection),
	}, nil
}

// EnsureIndexes crea los índices de las búsquedas indexadas y de ubicación.
func (r *ListingRepoMongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := r.listingsColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "developer", Value: 1}}},
		{Keys: bson.D{{Key: "investment", Value: 1}}},
		{Keys: bson.D{{Key: "region", Value: 1}, {Key: "city", Value: 1}, {Key: "district", Value: 1}}},
	})
	return err
}

// --- Structs de BSON para el mapeo ---

type mongoListing struct {
	ID          int64                `bson:"_id"`
	Developer   string               `bson:"developer"`
	Investment  string               `bson:"investment"`
	UnitNumber  string               `bson:"unitNumber"`
	Area        primitive.Decimal128 `bson:"area"`
	Price       primitive.Decimal128 `bson:"price"`
	Region      string               `bson:"region"`
	City        string               `bson:"city"`
	District    string               `bson:"district"`
	Floor       int                  `bson:"floor"`
	Status      string               `bson:"status"`
	Description string               `bson:"description"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

// fieldKeys traduce los campos neutrales a claves de documento.
var fieldKeys = map[string]string{
	listingDomain.FieldID:         "_id",
	listingDomain.FieldDeveloper:  "developer",
	listingDomain.FieldInvestment: "investment",
	listingDomain.FieldUnitNumber: "unitNumber",
	listingDomain.FieldArea:       "area",
	listingDomain.FieldPrice:      "price",
	listingDomain.FieldRegion:     "region",
	listingDomain.FieldCity:       "city",
	listingDomain.FieldDistrict:   "district",
	listingDomain.FieldFloor:      "floor",
	listingDomain.FieldStatus:     "status",
	listingDomain.FieldCreatedAt:  "createdAt",
	listingDomain.FieldUpdatedAt:  "updatedAt",
}

// --- CRUD Transaccional ---

// nextID reserva el siguiente ID numérico en la colección de contadores.
func (r *ListingRepoMongoDB) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.countersColl.FindOneAndUpdate(ctx,
		bson.M{"_id": listingsCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve listing id: %w", err)
	}
	return counter.Seq, nil
}

func (r *ListingRepoMongoDB) Create(ctx context.Context, l *listingDomain.Listing, evt sharedDomain.OutboxEvent) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	l.ID = id
	l.CreatedAt, l.UpdatedAt = now, now
	evt.AggregateID = strconv.FormatInt(id, 10)

	return r.withOutbox(ctx, evt, func(sessCtx mongo.SessionContext) error {
		doc, err := toMongoListing(l)
		if err != nil {
			return err
		}
		_, err = r.listingsColl.InsertOne(sessCtx, doc)
		return err
	})
}

func (r *ListingRepoMongoDB) Update(ctx context.Context, l *listingDomain.Listing, evt sharedDomain.OutboxEvent) error {
	return r.withOutbox(ctx, evt, func(sessCtx mongo.SessionContext) error {
		var prev mongoListing
		if err := r.listingsColl.FindOne(sessCtx, bson.M{"_id": l.ID}).Decode(&prev); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return listingDomain.ErrListingNotFound
			}
			return err
		}

		l.CreatedAt = prev.CreatedAt
		l.UpdatedAt = time.Now().UTC()
		doc, err := toMongoListing(l)
		if err != nil {
			return err
		}

		_, err = r.listingsColl.ReplaceOne(sessCtx, bson.M{"_id": l.ID}, doc)
		return err
	})
}

func (r *ListingRepoMongoDB) DeleteByID(ctx context.Context, id int64, evt sharedDomain.OutboxEvent) error {
	return r.withOutbox(ctx, evt, func(sessCtx mongo.SessionContext) error {
		res, err := r.listingsColl.DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return listingDomain.ErrListingNotFound
		}
		return nil
	})
}

// withOutbox ejecuta write y la inserción del evento en la misma transacción.
func (r *ListingRepoMongoDB) withOutbox(ctx context.Context, evt sharedDomain.OutboxEvent, write func(sessCtx mongo.SessionContext) error) error {
	outboxDoc, err := infraMongo.NewOutboxDocument(evt)
	if err != nil {
		return err
	}

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := write(sessCtx); err != nil {
			return nil, err
		}
		if _, err := r.outboxColl.InsertOne(sessCtx, outboxDoc); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

// --- Lectura ---

func (r *ListingRepoMongoDB) GetByID(ctx context.Context, id int64) (*listingDomain.Listing, error) {
	var ml mongoListing
	if err := r.listingsColl.FindOne(ctx, bson.M{"_id": id}).Decode(&ml); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, listingDomain.ErrListingNotFound
		}
		return nil, err
	}
	return fromMongoListing(&ml)
}

func (r *ListingRepoMongoDB) FindByDeveloper(ctx context.Context, developer string, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	return r.page(ctx, listingDomain.DeveloperCriteria{Developer: developer}, req)
}

func (r *ListingRepoMongoDB) FindByInvestment(ctx context.Context, investment string, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	return r.page(ctx, listingDomain.InvestmentCriteria{Investment: investment}, req)
}

func (r *ListingRepoMongoDB) FindAll(ctx context.Context, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	return r.page(ctx, nil, req)
}

func (r *ListingRepoMongoDB) page(ctx context.Context, criteria sharedDomain.Criteria, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	content, err := r.ListByCriteria(ctx, criteria, req.OffsetPagination(), req.Sort)
	if err != nil {
		return nil, err
	}
	total, err := r.CountByCriteria(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return sharedQuery.NewPage(content, req, total), nil
}

func (r *ListingRepoMongoDB) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sorts []sharedQuery.Sort) ([]*listingDomain.Listing, error) {
	filter, err := criteriaToMongoFilter(criteria)
	if err != nil {
		return nil, err
	}
	sortDoc, err := sortsToMongo(sorts)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(sortDoc)
	if p, ok := pagination.(sharedQuery.OffsetPagination); ok {
		opts.SetSkip(int64(p.Offset))
		opts.SetLimit(int64(p.Limit))
	}

	cursor, err := r.listingsColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	listings := []*listingDomain.Listing{}
	for cursor.Next(ctx) {
		var ml mongoListing
		if err := cursor.Decode(&ml); err != nil {
			return nil, err
		}
		l, err := fromMongoListing(&ml)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, cursor.Err()
}

func (r *ListingRepoMongoDB) CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int64, error) {
	filter, err := criteriaToMongoFilter(criteria)
	if err != nil {
		return 0, err
	}
	return r.listingsColl.CountDocuments(ctx, filter)
}

// --- Helpers de Mapeo y Conversión ---

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("decimal out of range %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(v.String())
}

func toMongoListing(l *listingDomain.Listing) (*mongoListing, error) {
	area, err := toDecimal128(l.Area)
	if err != nil {
		return nil, err
	}
	price, err := toDecimal128(l.Price)
	if err != nil {
		return nil, err
	}
	return &mongoListing{
		ID: l.ID, Developer: l.Developer, Investment: l.Investment, UnitNumber: l.UnitNumber,
		Area: area, Price: price, Region: l.Region, City: l.City, District: l.District,
		Floor: l.Floor, Status: string(l.Status), Description: l.Description,
		CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt,
	}, nil
}

func fromMongoListing(ml *mongoListing) (*listingDomain.Listing, error) {
	area, err := fromDecimal128(ml.Area)
	if err != nil {
		return nil, err
	}
	price, err := fromDecimal128(ml.Price)
	if err != nil {
		return nil, err
	}
	return &listingDomain.Listing{
		ID: ml.ID, Developer: ml.Developer, Investment: ml.Investment, UnitNumber: ml.UnitNumber,
		Area: area, Price: price, Region: ml.Region, City: ml.City, District: ml.District,
		Floor: ml.Floor, Status: listingDomain.Status(ml.Status), Description: ml.Description,
		CreatedAt: ml.CreatedAt, UpdatedAt: ml.UpdatedAt,
	}, nil
}

func mongoValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return toDecimal128(val)
	case listingDomain.Status:
		return string(val), nil
	default:
		return v, nil
	}
}

func mongoOperator(op sharedDomain.Operator) (string, error) {
	switch op {
	case sharedDomain.OpEq:
		return "$eq", nil
	case sharedDomain.OpGte:
		return "$gte", nil
	case sharedDomain.OpLte:
		return "$lte", nil
	}
	return "", fmt.Errorf("%w: %s", persistence.ErrUnsupportedOperator, op)
}

// criteriaToMongoFilter agrupa los operadores por campo: un rango sobre price
// produce {"price": {"$gte": .., "$lte": ..}} y no dos claves repetidas.
func criteriaToMongoFilter(criteria sharedDomain.Criteria) (bson.D, error) {
	filter := bson.D{}
	index := map[string]int{}

	for _, c := range sharedDomain.ConditionsOf(criteria) {
		key, ok := fieldKeys[c.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %s", persistence.ErrUnknownField, c.Field)
		}
		op, err := mongoOperator(c.Op)
		if err != nil {
			return nil, err
		}
		value, err := mongoValue(c.Value)
		if err != nil {
			return nil, err
		}

		if i, seen := index[key]; seen {
			ops := filter[i].Value.(bson.D)
			filter[i].Value = append(ops, bson.E{Key: op, Value: value})
			continue
		}
		index[key] = len(filter)
		filter = append(filter, bson.E{Key: key, Value: bson.D{{Key: op, Value: value}}})
	}
	return filter, nil
}

// sortsToMongo respeta el orden de las claves y desempata por _id.
// Mongo rechaza claves repetidas en $sort: gana la primera, igual que en ORDER BY.
func sortsToMongo(sorts []sharedQuery.Sort) (bson.D, error) {
	sortDoc := bson.D{}
	seen := make(map[string]bool, len(sorts)+1)
	for _, s := range sorts {
		key, ok := fieldKeys[s.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %s", sharedQuery.ErrInvalidSortField, s.Field)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		dir := 1
		if s.Desc {
			dir = -1
		}
		sortDoc = append(sortDoc, bson.E{Key: key, Value: dir})
	}
	if !seen["_id"] {
		sortDoc = append(sortDoc, bson.E{Key: "_id", Value: 1})
	}
	return sortDoc, nil
}

var _ listingDomain.ListingRepository = (*ListingRepoMongoDB)(nil)
