package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/checkin"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// One ticket per registration, next to the check-ins in the event's partition.
type ticketDynamo struct {
	PK             string
	SK             string
	EventID        string
	UserID         string
	RegistrationID string
	Token          string
	IssuedAt       time.Time
}

const (
	ticketEntityName = "TICKET"
)

func ticketSK(registrationID string) string {
	return fmt.Sprintf("%s#%s", ticketEntityName, registrationID)
}

func ticketKey(eventID uuid.UUID, registrationID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: eventPK(eventID)},
		"SK": &types.AttributeValueMemberS{Value: ticketSK(registrationID)},
	}
}

func newTicketDynamo(ticket checkin.Ticket) ticketDynamo {
	return ticketDynamo{
		PK:             eventPK(ticket.EventID),
		SK:             ticketSK(ticket.RegistrationID),
		EventID:        ticket.EventID.String(),
		UserID:         ticket.UserID,
		RegistrationID: ticket.RegistrationID,
		Token:          ticket.Token,
		IssuedAt:       ticket.IssuedAt,
	}
}

func ticketFromTicketDynamo(ticket ticketDynamo) checkin.Ticket {
	return checkin.Ticket{
		EventID:        uuid.MustParse(ticket.EventID),
		UserID:         ticket.UserID,
		RegistrationID: ticket.RegistrationID,
		Token:          ticket.Token,
		IssuedAt:       ticket.IssuedAt,
	}
}

func (d *DB) SaveTicket(ctx context.Context, ticket checkin.Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	item, err := attributevalue.MarshalMap(newTicketDynamo(ticket))
	if err != nil {
		return checkin.NewFailedToTranslateToDBModelError("Failed to convert Ticket to ticketDynamo", err)
	}

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return checkin.NewTimeoutError("SaveTicket timed out")
		}
		return checkin.NewFailedToWriteError("Failed PutItem call", err)
	}

	return nil
}

func (d *DB) GetTicket(ctx context.Context, eventID uuid.UUID, registrationID string) (checkin.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key:       ticketKey(eventID, registrationID),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return checkin.Ticket{}, checkin.NewTimeoutError("GetTicket timed out")
		}
		return checkin.Ticket{}, checkin.NewFailedToFetchError(fmt.Sprintf("Failed to fetch ticket for registration %q", registrationID), err)
	}

	if len(resp.Item) == 0 {
		return checkin.Ticket{}, checkin.NewTicketDoesNotExistError(fmt.Sprintf("No ticket issued for registration %q in event %q", registrationID, eventID), nil)
	}

	var ticket ticketDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &ticket)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal ticket from DB: %s", err))
	}
	return ticketFromTicketDynamo(ticket), nil
}
