package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/wilson12358/daybook/domain/core/entities"
	"github.com/wilson12358/daybook/domain/core/valueobjects"
	pkgerrors "github.com/wilson12358/daybook/pkg/errors"
)

// Single-table layout. The sort key embeds the occurrence timestamp so a
// plain Query with ScanIndexForward=false returns entries newest first, which
// is the only ordering the read paths ever need. GSI1 maps an entry id back
// to its item for point updates and deletes.
//
//	PK:     USER#<ownerID>
//	SK:     ENTRY#<occurredAt RFC3339>#<entryID>
//	GSI1PK: ENTRYID#<entryID>
const (
	pkPrefix     = "USER#"
	skPrefix     = "ENTRY#"
	gsi1Prefix   = "ENTRYID#"
	skTimeLayout = time.RFC3339
)

// DefaultGSI1IndexName is the id-lookup index name used when none is configured
const DefaultGSI1IndexName = "EntryIdIndex"

// EntryRepository persists entries in a single DynamoDB table
type EntryRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewEntryRepository creates a DynamoDB-backed entry repository. indexName is
// the GSI mapping entry ids back to items; empty falls back to
// DefaultGSI1IndexName.
func NewEntryRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) *EntryRepository {
	if indexName == "" {
		indexName = DefaultGSI1IndexName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

type entryItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`

	EntryID        string   `dynamodbav:"EntryID"`
	OwnerID        string   `dynamodbav:"OwnerID"`
	Title          string   `dynamodbav:"Title"`
	Body           string   `dynamodbav:"Body"`
	Tags           []string `dynamodbav:"Tags,omitempty"`
	Mood           int      `dynamodbav:"Mood"`
	AttachmentRefs []string `dynamodbav:"AttachmentRefs,omitempty"`
	OccurredAt     string   `dynamodbav:"OccurredAt"`
	CreatedAt      string   `dynamodbav:"CreatedAt"`
	UpdatedAt      string   `dynamodbav:"UpdatedAt"`

	Place     string  `dynamodbav:"Place,omitempty"`
	Latitude  float64 `dynamodbav:"Latitude,omitempty"`
	Longitude float64 `dynamodbav:"Longitude,omitempty"`

	WeatherCondition string  `dynamodbav:"WeatherCondition,omitempty"`
	Temperature      float64 `dynamodbav:"Temperature,omitempty"`
	HasLocation      bool    `dynamodbav:"HasLocation,omitempty"`
	HasWeather       bool    `dynamodbav:"HasWeather,omitempty"`
}

// Create stores a new entry and returns its id
func (r *EntryRepository) Create(ctx context.Context, entry *entities.Entry) (string, error) {
	item, err := attributevalue.MarshalMap(toItem(entry))
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to marshal entry").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return "", pkgerrors.NewValidationError("entry already exists")
		}
		return "", pkgerrors.NewDatabaseError("create entry", err)
	}

	return entry.ID().String(), nil
}

// FetchByOwner returns up to limit of the owner's entries, newest first
func (r *EntryRepository) FetchByOwner(ctx context.Context, ownerID string, limit int) ([]*entities.Entry, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(pkPrefix + ownerID)).
		And(expression.Key("SK").BeginsWith(skPrefix))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query expression").WithCause(err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	return r.queryEntries(ctx, input, limit)
}

// FetchByOwnerAndDateRange returns the owner's entries with start <= occurredAt < end,
// newest first
func (r *EntryRepository) FetchByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]*entities.Entry, error) {
	// The SK sorts lexically by RFC3339 timestamp, so the calendar range maps
	// directly onto a sort key range. The end bound is exclusive.
	low := skPrefix + start.UTC().Format(skTimeLayout)
	high := skPrefix + end.UTC().Format(skTimeLayout)

	keyCond := expression.Key("PK").Equal(expression.Value(pkPrefix + ownerID)).
		And(expression.Key("SK").Between(expression.Value(low), expression.Value(high)))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query expression").WithCause(err)
	}

	entries, err := r.queryEntries(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}, 0)
	if err != nil {
		return nil, err
	}

	// Between is inclusive on both ends; drop anything at exactly the end bound
	filtered := entries[:0]
	for _, e := range entries {
		if e.OccurredAt().Before(end) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Update replaces the stored item for the entry. If the occurrence timestamp
// changed, the sort key changed with it, so the old item is deleted and the
// new one written in a single transaction.
func (r *EntryRepository) Update(ctx context.Context, entry *entities.Entry) error {
	oldSK, err := r.lookupSortKey(ctx, entry.ID().String())
	if err != nil {
		return err
	}

	newItem := toItem(entry)
	item, err := attributevalue.MarshalMap(newItem)
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal entry").WithCause(err)
	}

	if oldSK == newItem.SK {
		_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      item,
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("update entry", err)
		}
		return nil
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Delete: &types.Delete{
					TableName: aws.String(r.tableName),
					Key:       entryKey(entry.OwnerID(), oldSK),
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(r.tableName),
					Item:      item,
				},
			},
		},
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("update entry", err)
	}
	return nil
}

// Delete removes an entry and returns the deleted record so the caller can
// cascade attachment cleanup
func (r *EntryRepository) Delete(ctx context.Context, ownerID, entryID string) (*entities.Entry, error) {
	item, err := r.lookupItem(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("entry %s not found", entryID))
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       entryKey(ownerID, item.SK),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("delete entry", err)
	}

	return fromItem(item)
}

// Count returns the owner's total entry count
func (r *EntryRepository) Count(ctx context.Context, ownerID string) (int, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(pkPrefix + ownerID)).
		And(expression.Key("SK").BeginsWith(skPrefix))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return 0, pkgerrors.NewInternalError("failed to build query expression").WithCause(err)
	}

	total := 0
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Select:                    types.SelectCount,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return 0, pkgerrors.NewDatabaseError("count entries", err)
		}
		total += int(out.Count)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return total, nil
}

func (r *EntryRepository) queryEntries(ctx context.Context, input *dynamodb.QueryInput, limit int) ([]*entities.Entry, error) {
	var entries []*entities.Entry
	var startKey map[string]types.AttributeValue

	for {
		input.ExclusiveStartKey = startKey
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query entries", err)
		}

		for _, raw := range out.Items {
			var item entryItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping unreadable entry item", zap.Error(err))
				continue
			}
			entry, err := fromItem(&item)
			if err != nil {
				r.logger.Warn("skipping invalid entry item",
					zap.String("entryID", item.EntryID), zap.Error(err))
				continue
			}
			entries = append(entries, entry)
			if limit > 0 && len(entries) >= limit {
				return entries, nil
			}
		}

		if out.LastEvaluatedKey == nil {
			return entries, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *EntryRepository) lookupSortKey(ctx context.Context, entryID string) (string, error) {
	item, err := r.lookupItem(ctx, entryID)
	if err != nil {
		return "", err
	}
	return item.SK, nil
}

func (r *EntryRepository) lookupItem(ctx context.Context, entryID string) (*entryItem, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(gsi1Prefix + entryID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query expression").WithCause(err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("lookup entry", err)
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("entry %s not found", entryID))
	}

	var item entryItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal entry item").WithCause(err)
	}
	return &item, nil
}

func entryKey(ownerID, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pkPrefix + ownerID},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func toItem(entry *entities.Entry) *entryItem {
	occurred := entry.OccurredAt().UTC()
	item := &entryItem{
		PK:             pkPrefix + entry.OwnerID(),
		SK:             skPrefix + occurred.Format(skTimeLayout) + "#" + entry.ID().String(),
		GSI1PK:         gsi1Prefix + entry.ID().String(),
		EntryID:        entry.ID().String(),
		OwnerID:        entry.OwnerID(),
		Title:          entry.Title(),
		Body:           entry.Body(),
		Tags:           entry.Tags().ToSlice(),
		Mood:           entry.Mood().Value(),
		AttachmentRefs: entry.AttachmentRefs(),
		OccurredAt:     occurred.Format(skTimeLayout),
		CreatedAt:      entry.CreatedAt().UTC().Format(skTimeLayout),
		UpdatedAt:      entry.UpdatedAt().UTC().Format(skTimeLayout),
	}
	if loc := entry.Location(); loc != nil {
		item.HasLocation = true
		item.Place = loc.Place
		item.Latitude = loc.Latitude
		item.Longitude = loc.Longitude
	}
	if w := entry.Weather(); w != nil {
		item.HasWeather = true
		item.WeatherCondition = w.Condition
		item.Temperature = w.Temperature
	}
	return item
}

func fromItem(item *entryItem) (*entities.Entry, error) {
	id, err := valueobjects.NewEntryIDFromString(item.EntryID)
	if err != nil {
		return nil, err
	}
	mood, err := valueobjects.NewMoodRating(item.Mood)
	if err != nil {
		return nil, err
	}
	occurredAt, err := time.Parse(skTimeLayout, item.OccurredAt)
	if err != nil {
		return nil, pkgerrors.NewInternalError("invalid OccurredAt timestamp").WithCause(err)
	}
	createdAt, err := time.Parse(skTimeLayout, item.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewInternalError("invalid CreatedAt timestamp").WithCause(err)
	}
	updatedAt, err := time.Parse(skTimeLayout, item.UpdatedAt)
	if err != nil {
		return nil, pkgerrors.NewInternalError("invalid UpdatedAt timestamp").WithCause(err)
	}

	var location *entities.Location
	if item.HasLocation {
		location = &entities.Location{
			Place:     item.Place,
			Latitude:  item.Latitude,
			Longitude: item.Longitude,
		}
	}
	var weather *entities.Weather
	if item.HasWeather {
		weather = &entities.Weather{
			Condition:   item.WeatherCondition,
			Temperature: item.Temperature,
		}
	}

	return entities.ReconstructEntry(
		id,
		item.OwnerID,
		item.Title,
		item.Body,
		occurredAt,
		createdAt,
		updatedAt,
		item.Tags,
		mood,
		item.AttachmentRefs,
		location,
		weather,
	), nil
}

