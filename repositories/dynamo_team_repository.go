package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type teamItem struct {
	Key            string            `dynamodbav:"key"`
	TeamName       string            `dynamodbav:"teamName"`
	ServerName     string            `dynamodbav:"serverName"`
	TournamentName string            `dynamodbav:"tournamentName"`
	TournamentDay  string            `dynamodbav:"tournamentDay"`
	StartTime      time.Time         `dynamodbav:"startTime"`
	Players        []string          `dynamodbav:"players,stringset,omitempty"`
	PlayersWRoles  map[string]string `dynamodbav:"playersWRoles,omitempty"`
	Version        int               `dynamodbav:"version,omitempty"`
}

func newTeamItem(team *models.Team) (teamItem, error) {
	item := teamItem{
		Key:            team.Key().String(),
		TeamName:       team.Name,
		ServerName:     team.ServerName,
		TournamentName: team.TournamentName,
		TournamentDay:  team.TournamentDay,
		StartTime:      team.StartTime,
	}
	switch r := team.Roster.(type) {
	case nil:
	case models.LegacyRoster:
		item.Players = r.Players()
	case models.RoleRoster:
		item.Players = r.Players()
		item.PlayersWRoles = r.Roles.Map()
		item.Version = int(models.TeamVersionRoles)
	default:
		return teamItem{}, fmt.Errorf("%w: %T", models.ErrUnknownTeamVersion, r)
	}
	return item, nil
}

func (i teamItem) toModel() (*models.Team, error) {
	roster, err := models.BuildRoster(models.TeamVersion(i.Version), nonNil(i.Players), i.PlayersWRoles)
	if err != nil {
		return nil, fmt.Errorf("team %q: %w", i.TeamName, err)
	}
	return &models.Team{
		Name:           i.TeamName,
		ServerName:     i.ServerName,
		TournamentName: i.TournamentName,
		TournamentDay:  i.TournamentDay,
		StartTime:      i.StartTime,
		Roster:         roster,
	}, nil
}

func decodeTeam(av map[string]types.AttributeValue) (*models.Team, error) {
	var item teamItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to decode team item: %w", err)
	}
	return item.toModel()
}

type dynamoTeamRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoTeamRepository(client DynamoAPI, table string) TeamRepository {
	return &dynamoTeamRepository{client: client, table: table}
}

func (r *dynamoTeamRepository) GetByKey(ctx context.Context, key models.TeamKey) (*models.Team, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            stringKey(key.String()),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get team %s: %w", key, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrTeamNotFound
	}
	return decodeTeam(out.Item)
}

func (r *dynamoTeamRepository) BatchGet(ctx context.Context, keys []models.TeamKey) ([]*models.Team, error) {
	if len(keys) == 0 {
		return []*models.Team{}, nil
	}
	avKeys := make([]map[string]types.AttributeValue, len(keys))
	for i, k := range keys {
		avKeys[i] = stringKey(k.String())
	}
	items, err := batchGetAll(ctx, r.client, r.table, avKeys)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*models.Team, len(items))
	for _, item := range items {
		team, err := decodeTeam(item)
		if err != nil {
			return nil, err
		}
		byKey[team.Key().String()] = team
	}
	// BatchGetItem does not preserve request order.
	teams := make([]*models.Team, 0, len(byKey))
	for _, k := range keys {
		if team, ok := byKey[k.String()]; ok {
			teams = append(teams, team)
		}
	}
	return teams, nil
}

func (r *dynamoTeamRepository) ListByServer(ctx context.Context, serverName string, version models.TeamVersion) ([]*models.Team, error) {
	filter := expression.Name("serverName").Equal(expression.Value(serverName))
	switch version {
	case models.TeamVersionLegacy:
		filter = filter.And(legacyOnly())
	case models.TeamVersionRoles:
		filter = filter.And(expression.Name("version").Equal(expression.Value(int(models.TeamVersionRoles))))
	default:
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownTeamVersion, version)
	}
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build team scan: %w", err)
	}

	items, err := scanAll(ctx, r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}

	teams := make([]*models.Team, 0, len(items))
	for _, item := range items {
		team, err := decodeTeam(item)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// Apply sends a single write as a plain conditional put or update and
// several writes as one TransactWriteItems call.
func (r *dynamoTeamRepository) Apply(ctx context.Context, writes ...TeamWrite) ([]*models.Team, error) {
	if len(writes) == 0 {
		return []*models.Team{}, nil
	}
	items := make([]types.TransactWriteItem, len(writes))
	for i, w := range writes {
		if err := w.validate(); err != nil {
			return nil, fmt.Errorf("%s %s: %w", w.Op, w.Key, err)
		}
		item, err := r.buildWrite(w)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", w.Op, w.Key, err)
		}
		items[i] = item
	}

	if len(items) == 1 {
		team, err := r.applySingle(ctx, writes[0], items[0])
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", writes[0].Op, writes[0].Key, err)
		}
		return []*models.Team{team}, nil
	}

	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return nil, fmt.Errorf("team transaction: %w", mapConditionError(err))
	}

	keys := make([]models.TeamKey, len(writes))
	for i, w := range writes {
		keys[i] = w.Key
	}
	teams, err := r.BatchGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to read back applied teams: %w", err)
	}
	if len(teams) != len(writes) {
		return nil, fmt.Errorf("read back %d of %d applied teams", len(teams), len(writes))
	}
	return teams, nil
}

func (r *dynamoTeamRepository) applySingle(ctx context.Context, w TeamWrite, item types.TransactWriteItem) (*models.Team, error) {
	if item.Put != nil {
		_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                 item.Put.TableName,
			Item:                      item.Put.Item,
			ConditionExpression:       item.Put.ConditionExpression,
			ExpressionAttributeNames:  item.Put.ExpressionAttributeNames,
			ExpressionAttributeValues: item.Put.ExpressionAttributeValues,
		})
		if err != nil {
			return nil, mapConditionError(err)
		}
		return decodeTeam(item.Put.Item)
	}
	if item.Update == nil {
		return nil, ErrEmptyWrite
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 item.Update.TableName,
		Key:                       item.Update.Key,
		UpdateExpression:          item.Update.UpdateExpression,
		ConditionExpression:       item.Update.ConditionExpression,
		ExpressionAttributeNames:  item.Update.ExpressionAttributeNames,
		ExpressionAttributeValues: item.Update.ExpressionAttributeValues,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, mapConditionError(err)
	}
	if len(out.Attributes) == 0 {
		return nil, errors.New("update returned no attributes")
	}
	return decodeTeam(out.Attributes)
}

func (r *dynamoTeamRepository) buildWrite(w TeamWrite) (types.TransactWriteItem, error) {
	nameMatches := expression.Name("teamName").Equal(expression.Value(w.Key.TeamName))

	switch w.Op {
	case OpCreate, OpReplace:
		item, err := newTeamItem(w.Team)
		if err != nil {
			return types.TransactWriteItem{}, err
		}
		av, err := attributevalue.MarshalMap(item)
		if err != nil {
			return types.TransactWriteItem{}, fmt.Errorf("failed to encode team: %w", err)
		}
		cond := nameMatches
		if w.Op == OpCreate {
			cond = expression.AttributeNotExists(expression.Name(dynamoKeyAttr))
		}
		expr, err := expression.NewBuilder().WithCondition(cond).Build()
		if err != nil {
			return types.TransactWriteItem{}, err
		}
		return types.TransactWriteItem{Put: &types.Put{
			TableName:                 aws.String(r.table),
			Item:                      av,
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		}}, nil

	case OpAddPlayer:
		players := expression.Name("players")
		hasRoom := expression.Or(
			expression.AttributeNotExists(players),
			expression.Contains(players, w.PlayerID),
			players.Size().LessThan(expression.Value(models.MaxTeamSize)),
		)
		update := expression.Add(players, expression.Value(stringSet{w.PlayerID}))
		return r.update(w.Key, update, nameMatches.And(legacyOnly(), hasRoom))

	case OpRemovePlayer:
		update := expression.Delete(expression.Name("players"), expression.Value(stringSet{w.PlayerID}))
		return r.update(w.Key, update, nameMatches.And(legacyOnly()))

	case OpSetRoles:
		update := expression.Set(expression.Name("playersWRoles"), expression.Value(w.Roles.Map())).
			Set(expression.Name("version"), expression.Value(int(models.TeamVersionRoles)))
		// An empty string set cannot be stored.
		if players := w.Roles.Players(); len(players) > 0 {
			update = update.Set(expression.Name("players"), expression.Value(stringSet(players)))
		} else {
			update = update.Remove(expression.Name("players"))
		}
		return r.update(w.Key, update, nameMatches)

	default:
		return types.TransactWriteItem{}, ErrEmptyWrite
	}
}

func (r *dynamoTeamRepository) update(key models.TeamKey, update expression.UpdateBuilder, cond expression.ConditionBuilder) (types.TransactWriteItem, error) {
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to build team update: %w", err)
	}
	return types.TransactWriteItem{Update: &types.Update{
		TableName:                 aws.String(r.table),
		Key:                       stringKey(key.String()),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}}, nil
}

func legacyOnly() expression.ConditionBuilder {
	return expression.Or(
		expression.AttributeNotExists(expression.Name("version")),
		expression.Name("version").Equal(expression.Value(int(models.TeamVersionLegacy))),
	)
}
