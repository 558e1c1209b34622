// Package dynamo stores audit records in a DynamoDB table keyed by entity
// type, newest last.
package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/ignite/software-catalog/internal/domain"
)

// PutItemAPI is the subset of the DynamoDB client the audit log uses.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// auditItem is the stored shape of an audit record.
type auditItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	ID         string `dynamodbav:"ID"`
	Action     string `dynamodbav:"Action"`
	EntityType string `dynamodbav:"EntityType"`
	EntityID   string `dynamodbav:"EntityID"`
	ActorID    string `dynamodbav:"ActorID"`
	Details    string `dynamodbav:"Details"`
	Timestamp  string `dynamodbav:"Timestamp"`
}

// AuditRepo appends audit records to DynamoDB.
type AuditRepo struct {
	client    PutItemAPI
	tableName string
}

// NewAuditRepo creates a DynamoDB-backed audit log.
func NewAuditRepo(client PutItemAPI, tableName string) *AuditRepo {
	return &AuditRepo{client: client, tableName: tableName}
}

// NewAuditRepoFromConfig builds the DynamoDB client from an AWS config.
func NewAuditRepoFromConfig(cfg aws.Config, tableName string) *AuditRepo {
	return NewAuditRepo(dynamodb.NewFromConfig(cfg), tableName)
}

func (r *AuditRepo) Record(ctx context.Context, rec *domain.AuditRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	details := rec.Details
	if details == "" {
		details = "{}"
	}
	ts := rec.CreatedAt.UTC().Format(time.RFC3339Nano)

	item := auditItem{
		PK:         "AUDIT#" + rec.EntityType,
		SK:         ts + "#" + rec.ID,
		ID:         rec.ID,
		Action:     string(rec.Action),
		EntityType: rec.EntityType,
		EntityID:   rec.EntityID,
		ActorID:    rec.ActorID,
		Details:    details,
		Timestamp:  ts,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return "", fmt.Errorf("marshaling audit item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return "", fmt.Errorf("putting audit item to DynamoDB: %w", err)
	}
	return rec.ID, nil
}
