package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-bazaar-nosql/internal/domain"
)

// ShopRepo provides typed DynamoDB operations for the shops table.
type ShopRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewShopRepo(client *dynamodb.Client, tableName string) *ShopRepo {
	return &ShopRepo{client: client, tableName: tableName}
}

func (r *ShopRepo) Put(ctx context.Context, s *domain.Shop) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal shop: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ShopRepo) Get(ctx context.Context, shopID string) (*domain.Shop, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("shop_id", shopID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("shop not found: %w", domain.ErrNotFound)
	}
	var s domain.Shop
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByOwner finds the shop owned by the given user via the owner_id GSI.
// Each owner has at most one shop.
func (r *ShopRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Shop, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("owner_id-index"),
		KeyConditionExpression:    aws.String("owner_id = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: ownerID}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("shop not found: %w", domain.ErrNotFound)
	}
	var s domain.Shop
	if err := attributevalue.UnmarshalMap(out.Items[0], &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShopRepo) Update(ctx context.Context, shopID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("shop_id", shopID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *ShopRepo) Delete(ctx context.Context, shopID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("shop_id", shopID),
	})
	return err
}

func (r *ShopRepo) Scan(ctx context.Context) ([]domain.Shop, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, err
	}
	var shops []domain.Shop
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}
