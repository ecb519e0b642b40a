package repository

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"

	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

const (
	dynamoPartitionKey = "resource_id"
	dynamoValueField    = "payload"
)

// DynamoDB is a Repository backed by github.com/aws/aws-sdk-go's
// DynamoDB client, selected when db_provider=dynamodb. Create uses a
// ConditionExpression so the absent-key check is atomic server-side,
// matching spec.md §4.2's "conditional on key absence" requirement.
type DynamoDB struct {
	client *dynamodb.DynamoDB
	table  string
}

func NewDynamoDB(client *dynamodb.DynamoDB, table string) *DynamoDB {
	return &DynamoDB{client: client, table: table}
}

func (d *DynamoDB) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := d.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key: map[string]*dynamodb.AttributeValue{
			dynamoPartitionKey: {S: aws.String(key)},
		},
	})
	if err != nil {
		return nil, domain.NewProviderError("dynamodb", "get_item", key, err)
	}
	if out.Item == nil {
		return nil, nil
	}
	v, ok := out.Item[dynamoValueField]
	if !ok || v.B == nil {
		return nil, nil
	}
	return v.B, nil
}

func (d *DynamoDB) Create(ctx context.Context, key string, value []byte) (bool, error) {
	_, err := d.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item: map[string]*dynamodb.AttributeValue{
			dynamoPartitionKey: {S: aws.String(key)},
			dynamoValueField:    {B: value},
		},
		ConditionExpression: aws.String("attribute_not_exists(" + dynamoPartitionKey + ")"),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
			return false, nil
		}
		return false, domain.NewProviderError("dynamodb", "put_item_conditional", key, err)
	}
	return true, nil
}

func (d *DynamoDB) Put(ctx context.Context, key string, value []byte) error {
	_, err := d.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item: map[string]*dynamodb.AttributeValue{
			dynamoPartitionKey: {S: aws.String(key)},
			dynamoValueField:    {B: value},
		},
	})
	if err != nil {
		return domain.NewProviderError("dynamodb", "put_item", key, err)
	}
	return nil
}

func (d *DynamoDB) Delete(ctx context.Context, key string) (bool, error) {
	out, err := d.client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.table),
		Key: map[string]*dynamodb.AttributeValue{
			dynamoPartitionKey: {S: aws.String(key)},
		},
		ReturnValues: aws.String(dynamodb.ReturnValueAllOld),
	})
	if err != nil {
		return false, domain.NewProviderError("dynamodb", "delete_item", key, err)
	}
	return out.Attributes != nil, nil
}
