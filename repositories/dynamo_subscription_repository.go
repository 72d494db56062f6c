package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/clash-teams/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type subscriptionItem struct {
	Key                string   `dynamodbav:"key"`
	PlayerName         string   `dynamodbav:"playerName"`
	ServerName         string   `dynamodbav:"serverName"`
	PreferredChampions []string `dynamodbav:"preferredChampions"`
}

type dynamoSubscriptionRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoSubscriptionRepository(client DynamoAPI, table string) SubscriptionRepository {
	return &dynamoSubscriptionRepository{client: client, table: table}
}

func (r *dynamoSubscriptionRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Subscription, error) {
	subs := make([]models.Subscription, 0, len(ids))
	if len(ids) == 0 {
		return subs, nil
	}
	seen := make(map[string]struct{}, len(ids))
	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		// BatchGetItem rejects duplicate keys.
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, stringKey(id))
	}

	items, err := batchGetAll(ctx, r.client, r.table, keys)
	if err != nil {
		return nil, err
	}
	for _, av := range items {
		var item subscriptionItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			return nil, fmt.Errorf("failed to decode subscription: %w", err)
		}
		subs = append(subs, models.Subscription{
			PlayerID:           item.Key,
			PlayerName:         item.PlayerName,
			ServerName:         item.ServerName,
			PreferredChampions: nonNil(item.PreferredChampions),
		})
	}
	return subs, nil
}

func (r *dynamoSubscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	av, err := attributevalue.MarshalMap(subscriptionItem{
		Key:                sub.PlayerID,
		PlayerName:         sub.PlayerName,
		ServerName:         sub.ServerName,
		PreferredChampions: nonNil(sub.PreferredChampions),
	})
	if err != nil {
		return fmt.Errorf("failed to encode subscription: %w", err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(r.table), Item: av}); err != nil {
		return fmt.Errorf("failed to put subscription %s: %w", sub.PlayerID, err)
	}
	return nil
}
