package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/barangaysm/portal-api/internal/domain"
)

// UserLogRepo appends audit rows to the user_logs table. Rows are append-only;
// the email-created_at GSI exists for operator queries from the console.
type UserLogRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserLogRepo(client *dynamodb.Client, tableName string) *UserLogRepo {
	return &UserLogRepo{client: client, tableName: tableName}
}

func (r *UserLogRepo) Put(ctx context.Context, l *domain.UserLog) error {
	item, err := attributevalue.MarshalMap(l)
	if err != nil {
		return fmt.Errorf("marshal user log: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put user log: %w: %w", domain.ErrUnavailable, err)
	}
	return nil
}
