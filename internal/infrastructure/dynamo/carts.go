package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-bazaar-nosql/internal/domain"
)

// CartRepo provides typed DynamoDB operations for the carts table.
// One item per user, keyed by user_id.
type CartRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCartRepo(client *dynamodb.Client, tableName string) *CartRepo {
	return &CartRepo{client: client, tableName: tableName}
}

func (r *CartRepo) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("cart not found: %w", domain.ErrNotFound)
	}
	var c domain.Cart
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Put overwrites the whole cart document. Concurrent writers race
// last-write-wins; there is no compare-and-swap on the item.
func (r *CartRepo) Put(ctx context.Context, c *domain.Cart) error {
	c.UpdatedAt = time.Now().UTC()
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// SetItems replaces the item collection in place (used by clear-cart).
func (r *CartRepo) SetItems(ctx context.Context, userID string, items []domain.CartItem) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldItems:   items,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *CartRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	return err
}
