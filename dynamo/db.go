package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	gsi1 = "GSI1"

	callTimeout = time.Second

	conditionalCheckFailed = "ConditionalCheckFailed"
)

var errInvalidCursor = errors.New("invalid cursor")

type DB struct {
	dynamoClient *dynamodb.Client
	tableName    string
}

func NewDB(dynamoClient *dynamodb.Client, tableName string) *DB {
	return &DB{
		dynamoClient: dynamoClient,
		tableName:    tableName,
	}
}

func newEntityVersionConditional(version int) expression.ConditionBuilder {
	return expression.Name("PK").AttributeNotExists().
		And(expression.Value(version).Equal(expression.Value(1)))
}

func existingEntityVersionConditional(version int) expression.ConditionBuilder {
	return expression.Name("PK").AttributeExists().
		And(expression.Name("Version").Equal(expression.Value(version - 1)))
}

func currentEntityVersionConditional(version int) expression.ConditionBuilder {
	return expression.Name("PK").AttributeExists().
		And(expression.Name("Version").Equal(expression.Value(version)))
}

func exprMustBuild(builder expression.Builder) expression.Expression {
	expr, err := builder.Build()
	if err != nil {
		panic("failed to build dynamo expression")
	}

	return expr
}

type page struct {
	items       []map[string]types.AttributeValue
	cursor      *string
	hasNextPage bool
}

// queryPage runs input for at most limit items starting after cursor.
func (d *DB) queryPage(ctx context.Context, input *dynamodb.QueryInput, limit int32, cursor *string) (page, error) {
	var startKey map[string]types.AttributeValue
	if cursor != nil {
		var err error
		startKey, err = cursorToLastEval(*cursor)
		if err != nil {
			return page{}, fmt.Errorf("%w: %w", errInvalidCursor, err)
		}
	}

	input.TableName = aws.String(d.tableName)
	// Fetch 1 more than limit to check if there is another page or not
	input.Limit = aws.Int32(limit + 1)
	input.ExclusiveStartKey = startKey

	result, err := d.dynamoClient.Query(ctx, input)
	if err != nil {
		return page{}, err
	}

	hasNextPage := len(result.Items) > int(limit)

	var newCursor *string
	if hasNextPage && len(result.LastEvaluatedKey) > 0 {
		// Can't use LastEvalKey directly because we grabbed an extra item to check for next page
		lastItemGivenToUser := result.Items[len(result.Items)-2]
		lastItemKey := getKeyFromItem(result.LastEvaluatedKey, lastItemGivenToUser)
		c, err := lastEvalKeyToCursor(lastItemKey)
		if err != nil {
			panic(fmt.Sprintf("failed to make cursor from lastEvalKey: %s", err))
		}
		newCursor = &c
	}

	return page{
		items:       result.Items[:min(int(limit), len(result.Items))],
		cursor:      newCursor,
		hasNextPage: hasNextPage,
	}, nil
}

func isConditionalCheckFailed(reason types.CancellationReason) bool {
	return aws.ToString(reason.Code) == conditionalCheckFailed
}

// CreateTable creates the single table and its GSI. Used for local development
// against dynamodb-local; deployed tables are provisioned outside this service.
func (d *DB) CreateTable(ctx context.Context) error {
	keyAttr := func(name string) types.AttributeDefinition {
		return types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		}
	}
	keySchema := func(hash, rng string) []types.KeySchemaElement {
		return []types.KeySchemaElement{
			{AttributeName: aws.String(hash), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(rng), KeyType: types.KeyTypeRange},
		}
	}

	_, err := d.dynamoClient.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:            aws.String(d.tableName),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{keyAttr("PK"), keyAttr("SK"), keyAttr("GSI1PK"), keyAttr("GSI1SK")},
		KeySchema:            keySchema("PK", "SK"),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName:  aws.String(gsi1),
				KeySchema:  keySchema("GSI1PK", "GSI1SK"),
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
	})
	if err != nil {
		var inUseErr *types.ResourceInUseException
		if errors.As(err, &inUseErr) {
			return nil
		}
		return fmt.Errorf("failed to create table %q: %w", d.tableName, err)
	}

	return nil
}
