package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "rentsync/internal/domain/pricing"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
)

type PricingRuleRepository struct {
	col *mongo.Collection
}

func NewPricingRuleRepository(db *mongo.Database) *PricingRuleRepository {
	return &PricingRuleRepository{col: db.Collection("pricing_rules")}
}

func (r *PricingRuleRepository) ByID(ctx context.Context, id string) (*domainpricing.Rule, error) {
	var doc ruleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpricing.ErrRuleNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PricingRuleRepository) ListByRoom(ctx context.Context, roomID domainrooms.RoomID) ([]*domainpricing.Rule, error) {
	cur, err := r.col.Find(ctx, bson.M{"room_id": roomID}, options.Find().SetSort(bson.M{"range.start": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rules []*domainpricing.Rule
	for cur.Next(ctx) {
		var doc ruleDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		rules = append(rules, doc.toAggregate())
	}
	return rules, cur.Err()
}

func (r *PricingRuleRepository) Save(ctx context.Context, rule *domainpricing.Rule) error {
	doc := newRuleDocument(rule)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *PricingRuleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainpricing.ErrRuleNotFound
	}
	return nil
}

type ruleDocument struct {
	ID        string        `bson:"_id"`
	RoomID    string        `bson:"room_id"`
	Type      string        `bson:"type"`
	Value     float64       `bson:"value"`
	Range     rangeDocument `bson:"range"`
	Active    bool          `bson:"active"`
	Weekdays  []int         `bson:"weekdays,omitempty"`
	CreatedAt int64         `bson:"created_at"`
	UpdatedAt int64         `bson:"updated_at"`
}

func newRuleDocument(rule *domainpricing.Rule) ruleDocument {
	doc := ruleDocument{
		ID:        rule.ID,
		RoomID:    string(rule.RoomID),
		Type:      string(rule.Type),
		Value:     rule.Value,
		Range:     rangeDocument{Start: rule.Range.Start.UnixMilli(), End: rule.Range.End.UnixMilli()},
		Active:    rule.Active,
		CreatedAt: rule.CreatedAt.UnixMilli(),
		UpdatedAt: rule.UpdatedAt.UnixMilli(),
	}
	for _, wd := range rule.Weekdays {
		doc.Weekdays = append(doc.Weekdays, int(wd))
	}
	return doc
}

func (d ruleDocument) toAggregate() *domainpricing.Rule {
	rule := &domainpricing.Rule{
		ID:        d.ID,
		RoomID:    domainrooms.RoomID(d.RoomID),
		Type:      domainpricing.RuleType(d.Type),
		Value:     d.Value,
		Range:     daterange.DateRange{Start: timestampToTime(d.Range.Start), End: timestampToTime(d.Range.End)},
		Active:    d.Active,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
	for _, wd := range d.Weekdays {
		rule.Weekdays = append(rule.Weekdays, time.Weekday(wd))
	}
	return rule
}
