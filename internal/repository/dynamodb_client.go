package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"support-agent/internal/domain"
)

const (
	pkPrefixInteraction = "INTERACTION#"
	skPrefixLog         = "LOG#"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoStore keeps the interaction log in a single DynamoDB table.
type DynamoStore struct {
	base
	api       dynamodbAPI
	tableName string
}

// NewDynamoStore creates a DynamoStore writing to tableName.
func NewDynamoStore(api dynamodbAPI, tableName string, opts ...Option) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DynamoStore{base: newBase(opts), api: api, tableName: tableName}, nil
}

func interactionPK(id string) string {
	return pkPrefixInteraction + id
}

func logSK(ts time.Time) string {
	return skPrefixLog + ts.UTC().Format(time.RFC3339Nano)
}

// SaveInteraction persists a new question/answer pair and returns the stored record.
func (s *DynamoStore) SaveInteraction(ctx context.Context, question, answer string) (domain.Interaction, error) {
	rec, err := s.newInteraction(question, answer)
	if err != nil {
		return domain.Interaction{}, err
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                s.interactionItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return domain.Interaction{}, fmt.Errorf("repository: SaveInteraction: %w", err)
	}
	return rec, nil
}

// GetInteraction loads the record with the given id.
func (s *DynamoStore) GetInteraction(ctx context.Context, id string) (domain.Interaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Interaction{}, domain.ErrInteractionNotFound
	}

	out, err := s.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: interactionPK(id)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixLog},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return domain.Interaction{}, fmt.Errorf("repository: GetInteraction query: %w", err)
	}
	if out == nil || len(out.Items) == 0 {
		return domain.Interaction{}, domain.ErrInteractionNotFound
	}

	rec, err := itemToInteraction(out.Items[0])
	if err != nil {
		return domain.Interaction{}, fmt.Errorf("repository: GetInteraction unmarshal: %w", err)
	}
	return rec, nil
}

func (s *DynamoStore) interactionItem(rec domain.Interaction) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: interactionPK(rec.ID)},
		"SK":        &types.AttributeValueMemberS{Value: logSK(rec.CreatedAt)},
		"id":        &types.AttributeValueMemberS{Value: rec.ID},
		"question":  &types.AttributeValueMemberS{Value: rec.Question},
		"answer":    &types.AttributeValueMemberS{Value: rec.Answer},
		"createdAt": &types.AttributeValueMemberS{Value: rec.CreatedAt.Format(time.RFC3339Nano)},
	}
	if s.retention > 0 {
		item["ttl"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rec.CreatedAt.Add(s.retention).Unix())}
	}
	return item
}

// itemToInteraction converts a DynamoDB attribute map to an Interaction.
func itemToInteraction(item map[string]types.AttributeValue) (domain.Interaction, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.Interaction{}, err
	}
	question, err := strAttr(item, "question")
	if err != nil {
		return domain.Interaction{}, err
	}
	answer, err := strAttr(item, "answer")
	if err != nil {
		return domain.Interaction{}, err
	}
	created, err := strAttr(item, "createdAt")
	if err != nil {
		return domain.Interaction{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return domain.Interaction{}, fmt.Errorf("repository: parse attribute %q: %w", "createdAt", err)
	}
	return domain.Interaction{ID: id, Question: question, Answer: answer, CreatedAt: ts}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
