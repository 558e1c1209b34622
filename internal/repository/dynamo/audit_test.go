package dynamo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/software-catalog/internal/domain"
)

type fakeDynamo struct {
	puts []*dynamodb.PutItemInput
	err  error
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, nil
}

func TestAuditRepo_Record(t *testing.T) {
	client := &fakeDynamo{}
	repo := NewAuditRepo(client, "catalog-audit")
	at := time.Date(2025, 3, 7, 9, 30, 0, 0, time.UTC)

	id, err := repo.Record(context.Background(), &domain.AuditRecord{
		Action:     domain.AuditImport,
		EntityType: domain.EntityCatalogEntry,
		EntityID:   "import-abc",
		ActorID:    "admin@example.org",
		Details:    `{"imported":2,"total":3}`,
		CreatedAt:  at,
	})
	require.NoError(t, err)
	require.Len(t, client.puts, 1)
	assert.Equal(t, "catalog-audit", aws.ToString(client.puts[0].TableName))

	var item auditItem
	require.NoError(t, attributevalue.UnmarshalMap(client.puts[0].Item, &item))
	assert.Equal(t, "AUDIT#catalog_entry", item.PK)
	assert.True(t, strings.HasPrefix(item.SK, "2025-03-07T09:30:00Z#"))
	assert.True(t, strings.HasSuffix(item.SK, id))
	assert.Equal(t, "IMPORT", item.Action)
	assert.Equal(t, "import-abc", item.EntityID)
	assert.Equal(t, `{"imported":2,"total":3}`, item.Details)
}

func TestAuditRepo_RecordError(t *testing.T) {
	boom := errors.New("throttled")
	repo := NewAuditRepo(&fakeDynamo{err: boom}, "t")

	_, err := repo.Record(context.Background(), &domain.AuditRecord{Action: domain.AuditDelete})
	assert.ErrorIs(t, err, boom)
}
