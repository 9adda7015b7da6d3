package blobstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DynamoDBAPI is the subset of the DynamoDB client the blob store uses
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// BlobRecord is a blob as stored in DynamoDB
type BlobRecord struct {
	PK        string `dynamodbav:"PK"` // BLOB#<key>
	SK        string `dynamodbav:"SK"` // BLOB
	Value     []byte `dynamodbav:"Value"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

// DynamoDBStore keeps each blob as one item in a PK/SK table
type DynamoDBStore struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewDynamoDBStore creates a DynamoDB backed blob store
func NewDynamoDBStore(client DynamoDBAPI, tableName string, logger *zap.Logger) (*DynamoDBStore, error) {
	if tableName == "" {
		return nil, errors.New("dynamodb table name cannot be empty")
	}
	return &DynamoDBStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}, nil
}

// Get loads the item for key
func (s *DynamoDBStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            blobKey(key),
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get blob: %w", err)
	}
	if result.Item == nil {
		return nil, false, nil
	}

	var record BlobRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal blob: %w", err)
	}
	return record.Value, true, nil
}

// Set overwrites the item for key
func (s *DynamoDBStore) Set(ctx context.Context, key string, value []byte) error {
	record := BlobRecord{
		PK:        "BLOB#" + key,
		SK:        "BLOB",
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal blob: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		s.logger.Error("dynamodb put failed",
			zap.String("table", s.tableName),
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save blob: %w", err)
	}
	return nil
}

func blobKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "BLOB#" + key},
		"SK": &types.AttributeValueMemberS{Value: "BLOB"},
	}
}
