package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"glock/internal/domain"
)

const (
	skActivity  = "ACTIVITY#"
	ttlDuration = 30 * 24 * time.Hour // participants idle for 30 days drop out
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Client is the activity registry backed by a DynamoDB table.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// userPK returns the DynamoDB partition key for a participant.
func userPK(userID int64) string {
	return "USER#" + strconv.FormatInt(userID, 10)
}

func key(userID int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
		"SK": &types.AttributeValueMemberS{Value: skActivity},
	}
}

// Get returns the last recorded activity of userID.
func (c *Client) Get(ctx context.Context, userID int64) (time.Time, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.tableName),
		Key:            key(userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("repository: Get get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return time.Time{}, false, nil
	}
	activity, err := itemToActivity(out.Item)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("repository: Get decode: %w", err)
	}
	return time.Unix(activity.LastActivity, 0), true, nil
}

// Set records at as the last activity of userID.
func (c *Client) Set(ctx context.Context, userID int64, at time.Time) error {
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      activityItem(NewActivity(userID, at)),
	})
	if err != nil {
		return fmt.Errorf("repository: Set: %w", err)
	}
	return nil
}

// Remove forgets userID. Removing an unknown user is not an error.
func (c *Client) Remove(ctx context.Context, userID int64) error {
	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key:       key(userID),
	})
	if err != nil {
		return fmt.Errorf("repository: Remove: %w", err)
	}
	return nil
}

// Contains reports whether userID has any recorded activity.
func (c *Client) Contains(ctx context.Context, userID int64) (bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(c.tableName),
		Key:                  key(userID),
		ProjectionExpression: aws.String("PK"),
		ConsistentRead:       aws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("repository: Contains get item: %w", err)
	}
	return out != nil && len(out.Item) > 0, nil
}

// NewActivity constructs an Activity record with PK/SK/TTL derived from at.
func NewActivity(userID int64, at time.Time) domain.Activity {
	return domain.Activity{
		PK:           userPK(userID),
		SK:           skActivity,
		UserID:       userID,
		LastActivity: at.Unix(),
		TTL:          at.Add(ttlDuration).Unix(),
	}
}

func activityItem(a domain.Activity) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: a.PK},
		"SK":           &types.AttributeValueMemberS{Value: a.SK},
		"userId":       &types.AttributeValueMemberN{Value: strconv.FormatInt(a.UserID, 10)},
		"lastActivity": &types.AttributeValueMemberN{Value: strconv.FormatInt(a.LastActivity, 10)},
		"ttl":          &types.AttributeValueMemberN{Value: strconv.FormatInt(a.TTL, 10)},
	}
}

// itemToActivity converts a DynamoDB attribute map to an Activity.
func itemToActivity(item map[string]types.AttributeValue) (domain.Activity, error) {
	pk, err := strAttr(item, "PK")
	if err != nil {
		return domain.Activity{}, err
	}
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.Activity{}, err
	}
	last, err := int64Attr(item, "lastActivity")
	if err != nil {
		return domain.Activity{}, err
	}
	userID, _ := int64Attr(item, "userId") // allow missing
	ttl, _ := int64Attr(item, "ttl")       // allow missing

	return domain.Activity{
		PK:           pk,
		SK:           sk,
		UserID:       userID,
		LastActivity: last,
		TTL:          ttl,
	}, nil
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

func int64Attr(item map[string]types.AttributeValue, key string) (int64, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
