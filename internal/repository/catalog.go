package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lunchdesk/internal/database"
	"lunchdesk/internal/models"
)

// Catalog reads menu weeks and day offers. Both collections are owned by the
// menu management service; nothing here writes to them.
type Catalog struct {
	weeks  *mongo.Collection
	offers *mongo.Collection
}

func NewCatalog(db *mongo.Database) *Catalog {
	return &Catalog{
		weeks:  db.Collection(database.MenuWeeksCollection),
		offers: db.Collection(database.DayOffersCollection),
	}
}

func (c *Catalog) WeekExists(ctx context.Context, weekStart time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	n, err := c.weeks.CountDocuments(ctx,
		bson.M{"weekStart": weekStart, "isPublished": true},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("count menu weeks: %w", err)
	}
	return n > 0, nil
}

func (c *Catalog) GetWeeks(ctx context.Context, weekStarts []time.Time) (map[string]models.MenuWeek, error) {
	weeks, err := c.findWeeks(ctx, bson.M{
		"weekStart":   bson.M{"$in": weekStarts},
		"isPublished": true,
	})
	if err != nil {
		return nil, err
	}

	found := make(map[string]models.MenuWeek, len(weeks))
	for _, week := range weeks {
		found[models.DateKey(week.WeekStart)] = week
	}
	return found, nil
}

func (c *Catalog) GetDishes(ctx context.Context, weekStart time.Time, day models.Weekday) ([]string, error) {
	week, err := c.findWeek(ctx, bson.M{"weekStart": weekStart, "isPublished": true})
	if err != nil || week == nil {
		return nil, err
	}

	var items []models.MenuItem
	for _, item := range week.Items {
		if item.Day == day {
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	dishes := make([]string, 0, len(items))
	for _, item := range items {
		dishes = append(dishes, item.Title)
	}
	return dishes, nil
}

func (c *Catalog) GetDayOffer(ctx context.Context, weekStart time.Time, day models.Weekday) (*models.DayOffer, error) {
	week, err := c.findWeek(ctx, bson.M{"weekStart": weekStart})
	if err != nil || week == nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var offer models.DayOffer
	err = c.offers.FindOne(ctx, bson.M{"weekId": week.ID, "day": day}).Decode(&offer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find day offer: %w", err)
	}
	offer.WeekStart = week.WeekStart
	return &offer, nil
}

// GetOffersByIDs resolves offers and their weeks with two queries. Ids that
// are not valid object ids, and offers whose week is gone, are left out.
func (c *Catalog) GetOffersByIDs(ctx context.Context, ids []string) (map[string]models.DayOffer, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return map[string]models.DayOffer{}, nil
	}

	offers, err := c.findOffers(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}

	weekIDs := make([]primitive.ObjectID, 0, len(offers))
	for _, offer := range offers {
		weekIDs = append(weekIDs, offer.WeekID)
	}
	weeks, err := c.findWeeks(ctx, bson.M{"_id": bson.M{"$in": weekIDs}})
	if err != nil {
		return nil, err
	}
	weekStarts := make(map[primitive.ObjectID]time.Time, len(weeks))
	for _, week := range weeks {
		weekStarts[week.ID] = week.WeekStart
	}

	found := make(map[string]models.DayOffer, len(offers))
	for _, offer := range offers {
		start, ok := weekStarts[offer.WeekID]
		if !ok {
			continue
		}
		offer.WeekStart = start
		found[offer.ID.Hex()] = offer
	}
	return found, nil
}

func (c *Catalog) findWeek(ctx context.Context, filter bson.M) (*models.MenuWeek, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var week models.MenuWeek
	err := c.weeks.FindOne(ctx, filter).Decode(&week)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find menu week: %w", err)
	}
	return &week, nil
}

func (c *Catalog) findWeeks(ctx context.Context, filter bson.M) ([]models.MenuWeek, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := c.weeks.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find menu weeks: %w", err)
	}
	defer cursor.Close(ctx)

	var weeks []models.MenuWeek
	if err := cursor.All(ctx, &weeks); err != nil {
		return nil, fmt.Errorf("decode menu weeks: %w", err)
	}
	return weeks, nil
}

func (c *Catalog) findOffers(ctx context.Context, filter bson.M) ([]models.DayOffer, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := c.offers.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find day offers: %w", err)
	}
	defer cursor.Close(ctx)

	var offers []models.DayOffer
	if err := cursor.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("decode day offers: %w", err)
	}
	return offers, nil
}
