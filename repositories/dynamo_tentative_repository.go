package repositories

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Dosada05/clash-teams/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type tentativeItem struct {
	Key               string              `dynamodbav:"key"`
	ServerName        string              `dynamodbav:"serverName"`
	TournamentDetails tentativeTournament `dynamodbav:"tournamentDetails"`
	TentativePlayers  []string            `dynamodbav:"tentativePlayers"`
}

type tentativeTournament struct {
	Name string `dynamodbav:"tournamentName"`
	Day  string `dynamodbav:"tournamentDay"`
}

type dynamoTentativeRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoTentativeRepository(client DynamoAPI, table string) TentativeRepository {
	return &dynamoTentativeRepository{client: client, table: table}
}

func (r *dynamoTentativeRepository) Get(ctx context.Context, key models.TentativeKey) (*models.TentativeList, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            stringKey(key.String()),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get tentative list %s: %w", key, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrTentativeNotFound
	}
	return decodeTentative(out.Item)
}

func (r *dynamoTentativeRepository) AddPlayer(ctx context.Context, key models.TentativeKey, playerID string) (*models.TentativeList, error) {
	players := expression.Name("tentativePlayers")
	update := expression.
		Set(expression.Name("serverName"), expression.Value(key.ServerName)).
		Set(expression.Name("tournamentDetails"), expression.Value(tentativeTournament{
			Name: key.TournamentName,
			Day:  key.TournamentDay,
		})).
		Set(players, expression.ListAppend(players.IfNotExists(expression.Value([]string{})), expression.Value([]string{playerID})))
	cond := expression.Or(
		expression.AttributeNotExists(expression.Name(dynamoKeyAttr)),
		expression.Not(players.Contains(playerID)),
	)
	return r.update(ctx, key, update, cond)
}

// RemovePlayer reads the list to find the player's index, then removes that
// index on the condition that it still holds the player.
func (r *dynamoTentativeRepository) RemovePlayer(ctx context.Context, key models.TentativeKey, playerID string) (*models.TentativeList, error) {
	current, err := r.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrTentativeNotFound) {
			return nil, ErrConditionFailed
		}
		return nil, err
	}
	idx := slices.Index(current.TentativePlayers, playerID)
	if idx < 0 {
		return nil, ErrConditionFailed
	}

	slot := expression.Name(fmt.Sprintf("tentativePlayers[%d]", idx))
	return r.update(ctx, key, expression.Remove(slot), slot.Equal(expression.Value(playerID)))
}

func (r *dynamoTentativeRepository) update(ctx context.Context, key models.TentativeKey, update expression.UpdateBuilder, cond expression.ConditionBuilder) (*models.TentativeList, error) {
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build tentative update: %w", err)
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       stringKey(key.String()),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		mapped := mapConditionError(err)
		if errors.Is(mapped, ErrConditionFailed) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update tentative list %s: %w", key, err)
	}
	return decodeTentative(out.Attributes)
}

func (r *dynamoTentativeRepository) ListByServer(ctx context.Context, serverName string) ([]*models.TentativeList, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("serverName").Equal(expression.Value(serverName))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build tentative scan: %w", err)
	}
	items, err := scanAll(ctx, r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, err
	}

	lists := make([]*models.TentativeList, 0, len(items))
	for _, item := range items {
		list, err := decodeTentative(item)
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	return lists, nil
}

func decodeTentative(av map[string]types.AttributeValue) (*models.TentativeList, error) {
	var item tentativeItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to decode tentative list: %w", err)
	}
	return &models.TentativeList{
		ServerName: item.ServerName,
		TournamentDetails: models.TournamentRef{
			Name: item.TournamentDetails.Name,
			Day:  item.TournamentDetails.Day,
		},
		TentativePlayers: nonNil(item.TentativePlayers),
	}, nil
}
