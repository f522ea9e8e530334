package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"golang.org/x/sync/errgroup"

	"github.com/imrishuroy/kashmkari-orderflow/internal/aws"
)

// bulkDeleteConcurrency caps in-flight DeleteItem calls in DeleteMany.
const bulkDeleteConcurrency = 8

// DynamoCollection stores documents as items of a DynamoDB table whose partition key is "id".
type DynamoCollection struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewDynamoCollection returns a collection bound to tableName.
func NewDynamoCollection(client aws.DynamoDBAPI, tableName string) *DynamoCollection {
	return &DynamoCollection{
		client:    client,
		tableName: tableName,
	}
}

func (c *DynamoCollection) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		KeyAttribute: &types.AttributeValueMemberS{Value: id},
	}
}

func (c *DynamoCollection) InsertOne(ctx context.Context, doc Document) error {
	item, err := attributevalue.MarshalMap(map[string]any(doc))
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	_, err = c.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &c.tableName,
		Item:                item,
		ConditionExpression: sdkaws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("put item: document %s already exists", doc.ID())
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func (c *DynamoCollection) FindByID(ctx context.Context, id string) (Document, error) {
	out, err := c.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &c.tableName,
		Key:            c.key(id),
		ConsistentRead: sdkaws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return unmarshalItem(out.Item)
}

func (c *DynamoCollection) FindAll(ctx context.Context) ([]Document, error) {
	var docs []Document
	p := dyn.NewScanPaginator(c.client, &dyn.ScanInput{
		TableName:      &c.tableName,
		ConsistentRead: sdkaws.Bool(true),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		for _, item := range page.Items {
			doc, err := unmarshalItem(item)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// UpdateByID issues a single SET update guarded by attribute_exists(id), so a missing
// document reports false instead of being upserted.
func (c *DynamoCollection) UpdateByID(ctx context.Context, id string, set Document) (bool, error) {
	if len(set) == 0 {
		doc, err := c.FindByID(ctx, id)
		return doc != nil, err
	}

	fields := make([]string, 0, len(set))
	for f := range set {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	names := map[string]string{"#id": KeyAttribute}
	values := make(map[string]types.AttributeValue, len(fields))
	expr := "SET "
	for i, f := range fields {
		n, v := "#f"+strconv.Itoa(i), ":v"+strconv.Itoa(i)
		av, err := attributevalue.Marshal(set[f])
		if err != nil {
			return false, fmt.Errorf("marshal %s: %w", f, err)
		}
		names[n] = f
		values[v] = av
		if i > 0 {
			expr += ", "
		}
		expr += n + " = " + v
	}

	_, err := c.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &c.tableName,
		Key:                       c.key(id),
		UpdateExpression:          &expr,
		ConditionExpression:       sdkaws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return false, nil
		}
		return false, fmt.Errorf("update item: %w", err)
	}
	return true, nil
}

func (c *DynamoCollection) DeleteByID(ctx context.Context, id string) (bool, error) {
	out, err := c.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName:    &c.tableName,
		Key:          c.key(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	return len(out.Attributes) > 0, nil
}

// DeleteMany fans out one DeleteItem per id; BatchWriteItem cannot report which keys existed.
func (c *DynamoCollection) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	var deleted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkDeleteConcurrency)
	for _, id := range uniqueIDs(ids) {
		id := id
		g.Go(func() error {
			ok, err := c.DeleteByID(gctx, id)
			if err != nil {
				return err
			}
			if ok {
				deleted.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return deleted.Load(), err
	}
	return deleted.Load(), nil
}

func (c *DynamoCollection) Close(context.Context) error { return nil }

func unmarshalItem(item map[string]types.AttributeValue) (Document, error) {
	var doc map[string]any
	if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return Document(doc), nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}
