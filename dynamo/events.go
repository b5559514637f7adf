package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"github.com/International-Combat-Archery-Alliance/event-checkin/slices"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

var _ events.Repository = &DB{}

type eventDynamo struct {
	PK        string
	SK        string
	GSI1PK    string
	GSI1SK    string
	ID        string
	Version   int
	Name      string
	VenueID   string `dynamodbav:",omitempty"`
	StartTime time.Time
	EndTime   time.Time
	Disabled  bool
}

const (
	eventEntityName = "EVENT"
)

func eventPK(id uuid.UUID) string {
	return fmt.Sprintf("%s#%s", eventEntityName, id)
}

func eventSK(id uuid.UUID) string {
	return fmt.Sprintf("%s#%s", eventEntityName, id)
}

func eventKey(id uuid.UUID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: eventPK(id)},
		"SK": &types.AttributeValueMemberS{Value: eventSK(id)},
	}
}

func optionalID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func parseOptionalID(s string) uuid.UUID {
	if s == "" {
		return uuid.Nil
	}
	return uuid.MustParse(s)
}

func newEventDynamo(event events.Event) eventDynamo {
	return eventDynamo{
		PK:     eventPK(event.ID),
		SK:     eventSK(event.ID),
		GSI1PK: eventEntityName,
		// RFC3339 in UTC sorts lexically in time order
		GSI1SK:    fmt.Sprintf("%s#%s#%s", eventEntityName, event.StartTime.UTC().Format(time.RFC3339), event.ID),
		ID:        event.ID.String(),
		Version:   event.Version,
		Name:      event.Name,
		VenueID:   optionalID(event.VenueID),
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
		Disabled:  event.Disabled,
	}
}

func eventFromEventDynamo(event eventDynamo) events.Event {
	return events.Event{
		ID:        uuid.MustParse(event.ID),
		Version:   event.Version,
		Name:      event.Name,
		VenueID:   parseOptionalID(event.VenueID),
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
		Disabled:  event.Disabled,
	}
}

func (d *DB) GetEvent(ctx context.Context, id uuid.UUID) (events.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key:       eventKey(id),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return events.Event{}, events.NewTimeoutError("GetEvent timed out")
		}
		return events.Event{}, events.NewFailedToFetchError(fmt.Sprintf("Failed to fetch event with ID %q", id), err)
	}

	if len(resp.Item) == 0 {
		return events.Event{}, events.NewEventDoesNotExistsError(fmt.Sprintf("Event with ID %q not found", id), nil)
	}

	var event eventDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &event)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal event from DB: %s", err))
	}
	return eventFromEventDynamo(event), nil
}

func (d *DB) CreateEvent(ctx context.Context, event events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	dynamoItem := newEventDynamo(event)

	item, err := attributevalue.MarshalMap(dynamoItem)
	if err != nil {
		return events.NewFailedToTranslateToDBModelError("Failed to convert Event to eventDynamo", err)
	}

	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(newEntityVersionConditional(dynamoItem.Version)))

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
			return events.NewEventAlreadyExistsError(fmt.Sprintf("Event with ID %q already exists", event.ID), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return events.NewTimeoutError("CreateEvent timed out")
		} else {
			return events.NewFailedToWriteError("Failed PutItem call", err)
		}
	}

	return nil
}

func (d *DB) GetEvents(ctx context.Context, limit int32, cursor *string) (events.GetEventsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	keyCond := expression.Key("GSI1PK").Equal(expression.Value(eventEntityName)).
		And(expression.Key("GSI1SK").BeginsWith(eventEntityName))

	expr := exprMustBuild(expression.NewBuilder().WithKeyCondition(keyCond))

	result, err := d.queryPage(ctx, &dynamodb.QueryInput{
		IndexName:                 aws.String(gsi1),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		// Want to sort newest event first
		ScanIndexForward: aws.Bool(false),
	}, limit, cursor)
	if err != nil {
		if errors.Is(err, errInvalidCursor) {
			return events.GetEventsResponse{}, events.NewInvalidCursorError("Invalid cursor", err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return events.GetEventsResponse{}, events.NewTimeoutError("GetEvents timed out")
		}
		return events.GetEventsResponse{}, events.NewFailedToFetchError("Failed to fetch events from dynamo", err)
	}

	var dynamoItems []eventDynamo
	err = attributevalue.UnmarshalListOfMaps(result.items, &dynamoItems)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal dynamo events: %s", err))
	}

	return events.GetEventsResponse{
		Data:        slices.Map(dynamoItems, eventFromEventDynamo),
		Cursor:      result.cursor,
		HasNextPage: result.hasNextPage,
	}, nil
}

func (d *DB) UpdateEvent(ctx context.Context, event events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	dynamoItem := newEventDynamo(event)

	item, err := attributevalue.MarshalMap(dynamoItem)
	if err != nil {
		return events.NewFailedToTranslateToDBModelError("Failed to convert Event to eventDynamo", err)
	}

	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(existingEntityVersionConditional(dynamoItem.Version)))

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
			return events.NewEventDoesNotExistsError(fmt.Sprintf("Event with ID %q does not exist at version %d", event.ID, event.Version-1), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return events.NewTimeoutError("UpdateEvent timed out")
		} else {
			return events.NewFailedToWriteError("Failed PutItem call", err)
		}
	}

	return nil
}
