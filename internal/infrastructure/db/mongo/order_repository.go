package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zabotech/ops-system/internal/core/domain"
	"github.com/zabotech/ops-system/internal/core/ports"
)

const collectionOrders = "orders"

// sortFields maps API sort keys to stored field names. Unknown keys fall
// back to created_at.
var sortFields = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"dueDate":       "due_date",
	"scheduledDate": "scheduled_date",
	"priority":      "priority",
	"status":        "status",
	"title":         "title",
}

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

type materialDoc struct {
	Name     string  `bson:"name"`
	Quantity int     `bson:"quantity"`
	Cost     float64 `bson:"cost,omitempty"`
}

type attachmentDoc struct {
	Filename   string    `bson:"filename"`
	URL        string    `bson:"url"`
	UploadedAt time.Time `bson:"uploaded_at"`
}

type statusChangeDoc struct {
	Status    string             `bson:"status"`
	ChangedBy primitive.ObjectID `bson:"changed_by"`
	ChangedAt time.Time          `bson:"changed_at"`
	Comment   string             `bson:"comment,omitempty"`
}

type orderDoc struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty"`
	OrderNumber       string              `bson:"order_number"`
	Client            primitive.ObjectID  `bson:"client"`
	CreatedBy         primitive.ObjectID  `bson:"created_by"`
	AssignedTo        *primitive.ObjectID `bson:"assigned_to,omitempty"`
	Title             string              `bson:"title"`
	Description       string              `bson:"description"`
	Category          string              `bson:"category"`
	Priority          string              `bson:"priority"`
	Status            string              `bson:"status"`
	EstimatedCost     *float64            `bson:"estimated_cost,omitempty"`
	ActualCost        *float64            `bson:"actual_cost,omitempty"`
	EstimatedDuration *float64            `bson:"estimated_duration,omitempty"`
	ActualDuration    *float64            `bson:"actual_duration,omitempty"`
	ScheduledDate     *time.Time          `bson:"scheduled_date,omitempty"`
	DueDate           *time.Time          `bson:"due_date,omitempty"`
	CompletedDate     *time.Time          `bson:"completed_date,omitempty"`
	Materials         []materialDoc       `bson:"materials"`
	Attachments       []attachmentDoc     `bson:"attachments,omitempty"`
	Notes             string              `bson:"notes,omitempty"`
	InternalNotes     string              `bson:"internal_notes,omitempty"`
	StatusHistory     []statusChangeDoc   `bson:"status_history"`
	CreatedAt         time.Time           `bson:"created_at"`
	UpdatedAt         time.Time           `bson:"updated_at"`
}

func (d *orderDoc) toDomain() *domain.Order {
	o := &domain.Order{
		ID:                d.ID.Hex(),
		OrderNumber:       d.OrderNumber,
		ClientID:          d.Client.Hex(),
		CreatedBy:         d.CreatedBy.Hex(),
		Title:             d.Title,
		Description:       d.Description,
		Category:          domain.OrderCategory(d.Category),
		Priority:          domain.OrderPriority(d.Priority),
		Status:            domain.OrderStatus(d.Status),
		EstimatedCost:     d.EstimatedCost,
		ActualCost:        d.ActualCost,
		EstimatedDuration: d.EstimatedDuration,
		ActualDuration:    d.ActualDuration,
		ScheduledDate:     d.ScheduledDate,
		DueDate:           d.DueDate,
		CompletedDate:     d.CompletedDate,
		Notes:             d.Notes,
		InternalNotes:     d.InternalNotes,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.AssignedTo != nil {
		o.AssignedTo = d.AssignedTo.Hex()
	}
	o.Materials = make([]domain.Material, 0, len(d.Materials))
	for _, m := range d.Materials {
		o.Materials = append(o.Materials, domain.Material{Name: m.Name, Quantity: m.Quantity, Cost: m.Cost})
	}
	for _, a := range d.Attachments {
		o.Attachments = append(o.Attachments, domain.Attachment{Filename: a.Filename, URL: a.URL, UploadedAt: a.UploadedAt})
	}
	o.StatusHistory = make([]domain.StatusChange, 0, len(d.StatusHistory))
	for _, h := range d.StatusHistory {
		o.StatusHistory = append(o.StatusHistory, domain.StatusChange{
			Status:    domain.OrderStatus(h.Status),
			ChangedBy: h.ChangedBy.Hex(),
			ChangedAt: h.ChangedAt,
			Comment:   h.Comment,
		})
	}
	return o
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	clientID, err := primitive.ObjectIDFromHex(o.ClientID)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}
	creatorID, err := primitive.ObjectIDFromHex(o.CreatedBy)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	doc := orderDoc{
		OrderNumber:       o.OrderNumber,
		Client:            clientID,
		CreatedBy:         creatorID,
		Title:             o.Title,
		Description:       o.Description,
		Category:          string(o.Category),
		Priority:          string(o.Priority),
		Status:            string(o.Status),
		EstimatedCost:     o.EstimatedCost,
		ActualCost:        o.ActualCost,
		EstimatedDuration: o.EstimatedDuration,
		ActualDuration:    o.ActualDuration,
		ScheduledDate:     o.ScheduledDate,
		DueDate:           o.DueDate,
		Materials:         []materialDoc{},
		StatusHistory:     []statusChangeDoc{},
		Notes:             o.Notes,
		InternalNotes:     o.InternalNotes,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, m := range o.Materials {
		doc.Materials = append(doc.Materials, materialDoc{Name: m.Name, Quantity: m.Quantity, Cost: m.Cost})
	}
	if o.AssignedTo != "" {
		assignee, err := primitive.ObjectIDFromHex(o.AssignedTo)
		if err != nil {
			return nil, domain.ErrAssignedUserNotFound
		}
		doc.AssignedTo = &assignee
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateOrderNumber
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}

	created := *o
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc orderDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) List(ctx context.Context, filter ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if err := addIDFilter(query, "client", filter.ClientID); err != nil {
		return []*domain.Order{}, 0, nil
	}
	if err := addIDFilter(query, "created_by", filter.CreatedBy); err != nil {
		return []*domain.Order{}, 0, nil
	}
	if err := addIDFilter(query, "assigned_to", filter.AssignedTo); err != nil {
		return []*domain.Order{}, 0, nil
	}

	sortField, ok := sortFields[filter.SortBy]
	if !ok {
		sortField = "created_at"
	}
	direction := 1
	if filter.SortDesc {
		direction = -1
	}

	skip := int64((filter.Page - 1) * filter.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}}).
		SetSkip(skip).
		SetLimit(int64(filter.Limit))

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)

	orders, err := decodeOrders(ctx, cur)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	return orders, total, nil
}

func (r *OrderRepository) ListByClient(ctx context.Context, clientID string, page, limit int) ([]*domain.Order, int64, error) {
	oid, err := primitive.ObjectIDFromHex(clientID)
	if err != nil {
		return []*domain.Order{}, 0, nil
	}
	query := bson.M{"client": oid}

	skip := int64((page - 1) * limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(limit))

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list client orders: %w", err)
	}
	defer cur.Close(ctx)

	orders, err := decodeOrders(ctx, cur)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count client orders: %w", err)
	}
	return orders, total, nil
}

func (r *OrderRepository) Update(ctx context.Context, id string, upd ports.OrderUpdate) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Category != nil {
		set["category"] = string(*upd.Category)
	}
	if upd.Priority != nil {
		set["priority"] = string(*upd.Priority)
	}
	if upd.AssignedTo != nil {
		assignee, err := primitive.ObjectIDFromHex(*upd.AssignedTo)
		if err != nil {
			return nil, domain.ErrAssignedUserNotFound
		}
		set["assigned_to"] = assignee
	}
	if upd.EstimatedCost != nil {
		set["estimated_cost"] = *upd.EstimatedCost
	}
	if upd.ActualCost != nil {
		set["actual_cost"] = *upd.ActualCost
	}
	if upd.EstimatedDuration != nil {
		set["estimated_duration"] = *upd.EstimatedDuration
	}
	if upd.ActualDuration != nil {
		set["actual_duration"] = *upd.ActualDuration
	}
	if upd.ScheduledDate != nil {
		set["scheduled_date"] = upd.ScheduledDate.UTC()
	}
	if upd.DueDate != nil {
		set["due_date"] = upd.DueDate.UTC()
	}
	if upd.Materials != nil {
		docs := make([]materialDoc, 0, len(*upd.Materials))
		for _, m := range *upd.Materials {
			docs = append(docs, materialDoc{Name: m.Name, Quantity: m.Quantity, Cost: m.Cost})
		}
		set["materials"] = docs
	}
	if upd.Attachments != nil {
		docs := make([]attachmentDoc, 0, len(*upd.Attachments))
		for _, a := range *upd.Attachments {
			docs = append(docs, attachmentDoc{Filename: a.Filename, URL: a.URL, UploadedAt: a.UploadedAt})
		}
		set["attachments"] = docs
	}
	if upd.Notes != nil {
		set["notes"] = *upd.Notes
	}
	if upd.InternalNotes != nil {
		set["internal_notes"] = *upd.InternalNotes
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc orderDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateStatus sets the status field and appends the history entry in a
// single document write, so the two can never disagree.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, entry domain.StatusChange, completedAt *time.Time) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}
	actor, err := primitive.ObjectIDFromHex(entry.ChangedBy)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	set := bson.M{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}
	if completedAt != nil {
		set["completed_date"] = completedAt.UTC()
	}

	update := bson.M{
		"$set": set,
		"$push": bson.M{"status_history": statusChangeDoc{
			Status:    string(entry.Status),
			ChangedBy: actor,
			ChangedAt: entry.ChangedAt.UTC(),
			Comment:   entry.Comment,
		}},
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc orderDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.groupCount(ctx, "$status")
}

func (r *OrderRepository) CountByPriority(ctx context.Context) (map[string]int64, error) {
	return r.groupCount(ctx, "$priority")
}

func (r *OrderRepository) groupCount(ctx context.Context, field string) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   field,
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", field, err)
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode group row: %w", err)
		}
		counts[row.ID] = row.Count
	}
	return counts, cur.Err()
}

func (r *OrderRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"due_date": bson.M{"$lt": now.UTC()},
		"status":   bson.M{"$ne": string(domain.StatusCompleted)},
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count overdue: %w", err)
	}
	return n, nil
}

func (r *OrderRepository) FindRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find recent orders: %w", err)
	}
	defer cur.Close(ctx)

	return decodeOrders(ctx, cur)
}

// EnsureIndexes creates the unique order-number index plus the compound
// indexes the list and stats queries lean on.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "client", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func addIDFilter(query bson.M, field, hexID string) error {
	if hexID == "" {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return err
	}
	query[field] = oid
	return nil
}

func decodeOrders(ctx context.Context, cur *mongo.Cursor) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for cur.Next(ctx) {
		var doc orderDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		orders = append(orders, doc.toDomain())
	}
	return orders, cur.Err()
}
