package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/checkin"
	"github.com/International-Combat-Archery-Alliance/event-checkin/slices"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

var _ checkin.Repository = &DB{}

// Check-ins live in the event's partition so one Query lists an event's door log.
type checkInDynamo struct {
	PK             string
	SK             string
	EventID        string
	UserID         string
	RegistrationID string
	Token          string
	IssuedAt       time.Time
	CheckedInAt    time.Time
}

const (
	checkInEntityName = "CHECKIN"
)

func checkInSK(registrationID string) string {
	return fmt.Sprintf("%s#%s", checkInEntityName, registrationID)
}

func newCheckInDynamo(c checkin.CheckIn) checkInDynamo {
	return checkInDynamo{
		PK:             eventPK(c.EventID),
		SK:             checkInSK(c.RegistrationID),
		EventID:        c.EventID.String(),
		UserID:         c.UserID,
		RegistrationID: c.RegistrationID,
		Token:          c.Token,
		IssuedAt:       c.IssuedAt,
		CheckedInAt:    c.CheckedInAt,
	}
}

func checkInFromCheckInDynamo(c checkInDynamo) checkin.CheckIn {
	return checkin.CheckIn{
		EventID:        uuid.MustParse(c.EventID),
		UserID:         c.UserID,
		RegistrationID: c.RegistrationID,
		Token:          c.Token,
		IssuedAt:       c.IssuedAt,
		CheckedInAt:    c.CheckedInAt,
	}
}

// RecordCheckIn writes the check-in only if the registration has not been
// checked in yet, the event still exists and is enabled, and the token is
// still the registration's issued ticket.
func (d *DB) RecordCheckIn(ctx context.Context, c checkin.CheckIn) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	dynamoItem := newCheckInDynamo(c)

	item, err := attributevalue.MarshalMap(dynamoItem)
	if err != nil {
		return checkin.NewFailedToTranslateToDBModelError("Failed to convert CheckIn to checkInDynamo", err)
	}

	putExpr := exprMustBuild(expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()))

	eventExpr := exprMustBuild(expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeExists().
			And(expression.Name("Disabled").Equal(expression.Value(false)))))

	ticketExpr := exprMustBuild(expression.NewBuilder().
		WithCondition(expression.Name("Token").Equal(expression.Value(c.Token))))

	_, err = d.dynamoClient.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:                 aws.String(d.tableName),
					Item:                      item,
					ConditionExpression:       putExpr.Condition(),
					ExpressionAttributeNames:  putExpr.Names(),
					ExpressionAttributeValues: putExpr.Values(),
				},
			},
			{
				ConditionCheck: &types.ConditionCheck{
					TableName:                 aws.String(d.tableName),
					Key:                       eventKey(c.EventID),
					ConditionExpression:       eventExpr.Condition(),
					ExpressionAttributeNames:  eventExpr.Names(),
					ExpressionAttributeValues: eventExpr.Values(),
				},
			},
			{
				ConditionCheck: &types.ConditionCheck{
					TableName:                 aws.String(d.tableName),
					Key:                       ticketKey(c.EventID, c.RegistrationID),
					ConditionExpression:       ticketExpr.Condition(),
					ExpressionAttributeNames:  ticketExpr.Names(),
					ExpressionAttributeValues: ticketExpr.Values(),
				},
			},
		},
	})
	if err != nil {
		var transactionFailedErr *types.TransactionCanceledException
		if errors.As(err, &transactionFailedErr) {
			reasons := transactionFailedErr.CancellationReasons
			if len(reasons) > 0 && isConditionalCheckFailed(reasons[0]) {
				return checkin.NewAlreadyCheckedInError(fmt.Sprintf("Registration %q is already checked in", c.RegistrationID), err)
			}
			if len(reasons) > 1 && isConditionalCheckFailed(reasons[1]) {
				return checkin.NewEventDisabledError(fmt.Sprintf("Event with ID %q is disabled or no longer exists", c.EventID))
			}
			if len(reasons) > 2 && isConditionalCheckFailed(reasons[2]) {
				return checkin.NewInvalidTokenError(fmt.Sprintf("Token is not the issued ticket for registration %q", c.RegistrationID), err)
			}
			return checkin.NewFailedToWriteError("Check-in transaction was cancelled", err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return checkin.NewTimeoutError("RecordCheckIn timed out")
		}
		return checkin.NewFailedToWriteError("Failed TransactWriteItems call", err)
	}

	return nil
}

func (d *DB) GetCheckIn(ctx context.Context, eventID uuid.UUID, registrationID string) (checkin.CheckIn, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: eventPK(eventID)},
			"SK": &types.AttributeValueMemberS{Value: checkInSK(registrationID)},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return checkin.CheckIn{}, checkin.NewTimeoutError("GetCheckIn timed out")
		}
		return checkin.CheckIn{}, checkin.NewFailedToFetchError(fmt.Sprintf("Failed to fetch check-in for registration %q", registrationID), err)
	}

	if len(resp.Item) == 0 {
		return checkin.CheckIn{}, checkin.NewCheckInDoesNotExistError(fmt.Sprintf("Registration %q has not checked in to event %q", registrationID, eventID), nil)
	}

	var c checkInDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &c)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal check-in from DB: %s", err))
	}
	return checkInFromCheckInDynamo(c), nil
}

func (d *DB) GetCheckInsForEvent(ctx context.Context, eventID uuid.UUID, limit int32, cursor *string) (checkin.GetCheckInsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	keyCond := expression.Key("PK").Equal(expression.Value(eventPK(eventID))).
		And(expression.Key("SK").BeginsWith(checkInEntityName))

	expr := exprMustBuild(expression.NewBuilder().WithKeyCondition(keyCond))

	result, err := d.queryPage(ctx, &dynamodb.QueryInput{
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, limit, cursor)
	if err != nil {
		if errors.Is(err, errInvalidCursor) {
			return checkin.GetCheckInsResponse{}, checkin.NewInvalidCursorError("Invalid cursor", err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return checkin.GetCheckInsResponse{}, checkin.NewTimeoutError("GetCheckInsForEvent timed out")
		}
		return checkin.GetCheckInsResponse{}, checkin.NewFailedToFetchError("Failed to fetch check-ins from dynamo", err)
	}

	var dynamoItems []checkInDynamo
	err = attributevalue.UnmarshalListOfMaps(result.items, &dynamoItems)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal dynamo check-ins: %s", err))
	}

	return checkin.GetCheckInsResponse{
		Data:        slices.Map(dynamoItems, checkInFromCheckInDynamo),
		Cursor:      result.cursor,
		HasNextPage: result.hasNextPage,
	}, nil
}
