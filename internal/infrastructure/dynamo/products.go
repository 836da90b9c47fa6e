package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-bazaar-nosql/internal/domain"
)

// ProductRepo provides typed DynamoDB operations for the products table.
type ProductRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProductRepo(client *dynamodb.Client, tableName string) *ProductRepo {
	return &ProductRepo{client: client, tableName: tableName}
}

func (r *ProductRepo) Put(ctx context.Context, p *domain.Product) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ProductRepo) Get(ctx context.Context, productID string) (*domain.Product, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("product_id", productID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	var p domain.Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByShop returns every product belonging to a shop via the shop_id GSI.
func (r *ProductRepo) ListByShop(ctx context.Context, shopID string) ([]domain.Product, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("shop_id-index"),
		KeyConditionExpression:    aws.String("shop_id = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: shopID}},
	})
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepo) Update(ctx context.Context, productID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("product_id", productID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *ProductRepo) Delete(ctx context.Context, productID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("product_id", productID),
	})
	return err
}

// DeleteByShop removes every product referencing the shop, one delete per
// item. There is no transactional boundary across the deletes; a partial
// failure leaves the remainder in place and returns the first error.
func (r *ProductRepo) DeleteByShop(ctx context.Context, shopID string) error {
	products, err := r.ListByShop(ctx, shopID)
	if err != nil {
		return err
	}
	var firstErr error
	for i := range products {
		if err := r.Delete(ctx, products[i].ProductID); err != nil {
			slog.Warn("failed to delete product during shop cascade", "product_id", products[i].ProductID, "shop_id", shopID, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
