package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Tournaments are keyed by tournamentName (hash) and tournamentDay (range).
type tournamentItem struct {
	Name             string    `dynamodbav:"tournamentName"`
	Day              string    `dynamodbav:"tournamentDay"`
	StartTime        time.Time `dynamodbav:"startTime"`
	RegistrationTime time.Time `dynamodbav:"registrationTime"`
}

type dynamoTournamentRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoTournamentRepository(client DynamoAPI, table string) TournamentRepository {
	return &dynamoTournamentRepository{client: client, table: table}
}

func (r *dynamoTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	av, err := attributevalue.MarshalMap(tournamentItem(*t))
	if err != nil {
		return fmt.Errorf("failed to encode tournament: %w", err)
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("tournamentName"))).
		Build()
	if err != nil {
		return err
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if errors.Is(mapConditionError(err), ErrConditionFailed) {
			return ErrTournamentConflict
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *dynamoTournamentRepository) Get(ctx context.Context, name, day string) (*models.Tournament, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"tournamentName": &types.AttributeValueMemberS{Value: name},
			"tournamentDay":  &types.AttributeValueMemberS{Value: day},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrTournamentNotFound
	}
	var item tournamentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to decode tournament: %w", err)
	}
	t := models.Tournament(item)
	return &t, nil
}

func (r *dynamoTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	items, err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.table)})
	if err != nil {
		return nil, err
	}
	tournaments := make([]models.Tournament, 0, len(items))
	for _, av := range items {
		var item tournamentItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			return nil, fmt.Errorf("failed to decode tournament: %w", err)
		}
		tournaments = append(tournaments, models.Tournament(item))
	}
	sort.Slice(tournaments, func(i, j int) bool {
		if !tournaments[i].StartTime.Equal(tournaments[j].StartTime) {
			return tournaments[i].StartTime.Before(tournaments[j].StartTime)
		}
		return tournaments[i].Name < tournaments[j].Name
	})
	return tournaments, nil
}
