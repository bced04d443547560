package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainblock "bookingcore/internal/domain/block"
	domainbooking "bookingcore/internal/domain/booking"
	domainproperty "bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection(propertiesCollection)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperty.ErrPropertyNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

// Save upserts guarded by the version read; a stale writer gets ErrConcurrentUpdate.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	doc.Version = b.Version + 1
	if err := versionedUpsert(ctx, r.col, doc.ID, b.Version, doc); err != nil {
		return err
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) FindOverlapping(ctx context.Context, propertyID domainproperty.PropertyID, dr daterange.DateRange, exclude domainbooking.BookingID) ([]*domainbooking.Booking, error) {
	filter := overlapFilter(propertyID, dr, string(exclude))
	filter["status"] = bson.M{"$ne": string(domainbooking.StatusCanceled)}
	return r.find(ctx, filter)
}

func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"property_id": string(propertyID)})
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_day", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, d := range docs {
		b, err := d.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

type BlockRepository struct {
	col *mongo.Collection
}

func NewBlockRepository(db *mongo.Database) *BlockRepository {
	return &BlockRepository{col: db.Collection(blocksCollection)}
}

func (r *BlockRepository) ByID(ctx context.Context, id domainblock.BlockID) (*domainblock.Block, error) {
	var doc blockDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainblock.ErrBlockNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BlockRepository) Save(ctx context.Context, b *domainblock.Block) error {
	doc := newBlockDocument(b)
	doc.Version = b.Version + 1
	if err := versionedUpsert(ctx, r.col, doc.ID, b.Version, doc); err != nil {
		return err
	}
	b.Version = doc.Version
	return nil
}

func (r *BlockRepository) Delete(ctx context.Context, id domainblock.BlockID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainblock.ErrBlockNotFound
	}
	return nil
}

func (r *BlockRepository) FindOverlapping(ctx context.Context, propertyID domainproperty.PropertyID, dr daterange.DateRange, exclude domainblock.BlockID) ([]*domainblock.Block, error) {
	return r.find(ctx, overlapFilter(propertyID, dr, string(exclude)))
}

func (r *BlockRepository) ListByProperty(ctx context.Context, propertyID domainproperty.PropertyID) ([]*domainblock.Block, error) {
	return r.find(ctx, bson.M{"property_id": string(propertyID)})
}

func (r *BlockRepository) find(ctx context.Context, filter bson.M) ([]*domainblock.Block, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_day", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []blockDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainblock.Block, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

// overlapFilter matches closed ranges sharing at least one day with dr.
func overlapFilter(propertyID domainproperty.PropertyID, dr daterange.DateRange, exclude string) bson.M {
	filter := bson.M{
		"property_id": string(propertyID),
		"start_day":   bson.M{"$lte": dr.End},
		"end_day":     bson.M{"$gte": dr.Start},
	}
	if exclude != "" {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	return filter
}

func versionedUpsert(ctx context.Context, col *mongo.Collection, id string, version int64, doc any) error {
	filter := bson.M{"_id": id, "version": version}
	res, err := col.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

var (
	_ domainproperty.Repository = (*PropertyRepository)(nil)
	_ domainbooking.Repository  = (*BookingRepository)(nil)
	_ domainblock.Repository    = (*BlockRepository)(nil)
)
