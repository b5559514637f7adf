package dynamo

import (
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Cursors travel in query strings, so they use the URL-safe alphabet.
var cursorEncoding = base64.RawURLEncoding

func lastEvalKeyToCursor(lastEvalKey map[string]types.AttributeValue) (string, error) {
	keyJSON, err := attributevalue.MarshalMapJSON(lastEvalKey)
	if err != nil {
		return "", fmt.Errorf("failed to encode cursor key to JSON: %w", err)
	}

	return cursorEncoding.EncodeToString(keyJSON), nil
}

func cursorToLastEval(cursor string) (map[string]types.AttributeValue, error) {
	keyJSON, err := cursorEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cursor: %w", err)
	}

	key, err := attributevalue.UnmarshalMapJSON(keyJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cursor key JSON: %w", err)
	}

	if len(key) == 0 {
		return nil, fmt.Errorf("cursor has an empty key")
	}

	return key, nil
}

// getKeyFromItem picks the attributes named in key out of item.
func getKeyFromItem(key map[string]types.AttributeValue, item map[string]types.AttributeValue) map[string]types.AttributeValue {
	result := make(map[string]types.AttributeValue, len(key))
	for k := range key {
		result[k] = item[k]
	}
	return result
}
