package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"github.com/International-Combat-Archery-Alliance/event-checkin/slices"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type venueDynamo struct {
	PK      string
	SK      string
	ID      string
	Version int
	Name    string
	Address events.Address
	Areas   []areaDynamo
}

type areaDynamo struct {
	ID       string
	Name     string
	Capacity int
}

const (
	venueEntityName = "VENUE"
)

func venuePK(id uuid.UUID) string {
	return fmt.Sprintf("%s#%s", venueEntityName, id)
}

func venueSK(id uuid.UUID) string {
	return fmt.Sprintf("%s#%s", venueEntityName, id)
}

func venueKey(id uuid.UUID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: venuePK(id)},
		"SK": &types.AttributeValueMemberS{Value: venueSK(id)},
	}
}

func newVenueDynamo(venue events.Venue) venueDynamo {
	return venueDynamo{
		PK:      venuePK(venue.ID),
		SK:      venueSK(venue.ID),
		ID:      venue.ID.String(),
		Version: venue.Version,
		Name:    venue.Name,
		Address: venue.Address,
		Areas: slices.Map(venue.Areas, func(a events.Area) areaDynamo {
			return areaDynamo{ID: a.ID.String(), Name: a.Name, Capacity: a.Capacity}
		}),
	}
}

func venueFromVenueDynamo(venue venueDynamo) events.Venue {
	return events.Venue{
		ID:      uuid.MustParse(venue.ID),
		Version: venue.Version,
		Name:    venue.Name,
		Address: venue.Address,
		Areas: slices.Map(venue.Areas, func(a areaDynamo) events.Area {
			return events.Area{ID: uuid.MustParse(a.ID), Name: a.Name, Capacity: a.Capacity}
		}),
	}
}

func (d *DB) GetVenue(ctx context.Context, id uuid.UUID) (events.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key:       venueKey(id),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return events.Venue{}, events.NewTimeoutError("GetVenue timed out")
		}
		return events.Venue{}, events.NewFailedToFetchError(fmt.Sprintf("Failed to fetch venue with ID %q", id), err)
	}

	if len(resp.Item) == 0 {
		return events.Venue{}, events.NewVenueDoesNotExistError(fmt.Sprintf("Venue with ID %q not found", id), nil)
	}

	var venue venueDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &venue)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal venue from DB: %s", err))
	}
	return venueFromVenueDynamo(venue), nil
}

func (d *DB) CreateVenue(ctx context.Context, venue events.Venue) error {
	return d.putVenue(ctx, venue, newEntityVersionConditional(venue.Version), func(err error) error {
		return events.NewVenueAlreadyExistsError(fmt.Sprintf("Venue with ID %q already exists", venue.ID), err)
	})
}

func (d *DB) UpdateVenue(ctx context.Context, venue events.Venue) error {
	return d.putVenue(ctx, venue, existingEntityVersionConditional(venue.Version), func(err error) error {
		return events.NewVenueDoesNotExistError(fmt.Sprintf("Venue with ID %q does not exist at version %d", venue.ID, venue.Version-1), err)
	})
}

func (d *DB) putVenue(ctx context.Context, venue events.Venue, cond expression.ConditionBuilder, condFailed func(error) error) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	item, err := attributevalue.MarshalMap(newVenueDynamo(venue))
	if err != nil {
		return events.NewFailedToTranslateToDBModelError("Failed to convert Venue to venueDynamo", err)
	}

	expr := exprMustBuild(expression.NewBuilder().WithCondition(cond))

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(d.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return condFailed(err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return events.NewTimeoutError("Writing venue timed out")
		} else {
			return events.NewFailedToWriteError("Failed PutItem call", err)
		}
	}

	return nil
}

// DeleteVenue only deletes the venue if it is still at venue.Version.
func (d *DB) DeleteVenue(ctx context.Context, venue events.Venue) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(currentEntityVersionConditional(venue.Version)))

	_, err := d.dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(d.tableName),
		Key:                       venueKey(venue.ID),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return events.NewVenueDoesNotExistError(fmt.Sprintf("Venue with ID %q does not exist at version %d", venue.ID, venue.Version), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return events.NewTimeoutError("DeleteVenue timed out")
		} else {
			return events.NewFailedToWriteError("Failed DeleteItem call", err)
		}
	}

	return nil
}
