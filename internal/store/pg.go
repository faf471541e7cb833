// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"quest-platform/internal/quest"
	pkgerrors "quest-platform/pkg/errors"
)

const (
	defaultMinConns = 5
	defaultMaxConns = 10
)

// PGOptions Postgres 连接配置
type PGOptions struct {
	URL      string
	MinConns int32
	MaxConns int32
}

// PGStore PostgreSQL 实现
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore 创建基于 PostgreSQL 的 Store；连接池边界未配置时取 5/10
func NewPGStore(ctx context.Context, opts PGOptions) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, err
	}
	config.MinConns = defaultMinConns
	config.MaxConns = defaultMaxConns
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PGStore{pool: pool}, nil
}

// EnsureSchema 应用建表语句（可重复执行）
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

// Close 关闭连接池
func (s *PGStore) Close() {
	s.pool.Close()
}

const questColumns = `q.id, q.name, q.description, q.image_url, q.definition, q.creator_address, q.created_at,
	(d.quest_id IS NULL) AS active
	FROM quests q LEFT JOIN deactivated_quests d ON d.quest_id = q.id`

func scanQuest(row pgx.Row) (*Quest, error) {
	var q Quest
	var createdAt time.Time
	if err := row.Scan(&q.ID, &q.Name, &q.Description, &q.ImageURL, &q.Definition,
		&q.CreatorAddress, &createdAt, &q.Active); err != nil {
		return nil, err
	}
	q.CreatedAt = createdAt.Unix()
	return &q, nil
}

func (s *PGStore) CreateQuest(ctx context.Context, q *Quest) (string, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatorAddress = quest.NormalizeAddress(q.CreatorAddress)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quests (id, name, description, image_url, definition, creator_address)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		q.ID, q.Name, q.Description, q.ImageURL, q.Definition, q.CreatorAddress)
	if err != nil {
		if isUniqueViolation(err) {
			return "", pkgerrors.Wrapf(pkgerrors.ErrAlreadyExists, "quest %s", q.ID)
		}
		return "", err
	}
	return q.ID, nil
}

func (s *PGStore) UpdateQuest(ctx context.Context, prevID string, q *Quest, creator string) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var prevCreator string
	err = tx.QueryRow(ctx, `SELECT creator_address FROM quests WHERE id = $1 FOR UPDATE`, prevID).Scan(&prevCreator)
	if err != nil {
		if errNoRows(err) {
			return "", pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", prevID)
		}
		return "", err
	}
	if prevCreator != quest.NormalizeAddress(creator) {
		return "", quest.ErrNotQuestCreator
	}

	newID := q.ID
	if newID == "" {
		newID = uuid.NewString()
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO quests (id, name, description, image_url, definition, creator_address)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		newID, q.Name, q.Description, q.ImageURL, q.Definition, prevCreator)
	if err != nil {
		return "", err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO deactivated_quests (quest_id) VALUES ($1) ON CONFLICT (quest_id) DO NOTHING`, prevID)
	if err != nil {
		return "", err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO quest_updates (id, quest_id, previous_quest_id) VALUES ($1, $2, $3)`,
		uuid.NewString(), newID, prevID)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return newID, nil
}

func (s *PGStore) GetQuest(ctx context.Context, id string) (*Quest, error) {
	q, err := scanQuest(s.pool.QueryRow(ctx, `SELECT `+questColumns+` WHERE q.id = $1`, id))
	if err != nil {
		if errNoRows(err) {
			return nil, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", id)
		}
		return nil, err
	}
	return q, nil
}

func (s *PGStore) GetActiveQuests(ctx context.Context, offset, limit int) ([]*Quest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+questColumns+` WHERE d.quest_id IS NULL ORDER BY q.created_at DESC OFFSET $1 LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, err
	}
	return collectQuests(rows)
}

func (s *PGStore) GetQuestsByCreator(ctx context.Context, creator string, offset, limit int) ([]*Quest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+questColumns+` WHERE q.creator_address = $1 ORDER BY q.created_at DESC OFFSET $2 LIMIT $3`,
		quest.NormalizeAddress(creator), offset, limit)
	if err != nil {
		return nil, err
	}
	return collectQuests(rows)
}

func collectQuests(rows pgx.Rows) ([]*Quest, error) {
	defer rows.Close()
	var quests []*Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		quests = append(quests, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return quests, nil
}

func (s *PGStore) IsActiveQuest(ctx context.Context, id string) (bool, error) {
	var active bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM quests q
			WHERE q.id = $1 AND NOT EXISTS (SELECT 1 FROM deactivated_quests d WHERE d.quest_id = q.id)
		)`, id).Scan(&active)
	return active, err
}

func (s *PGStore) IsUpdatable(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", id)
	}
	var hasInstances bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quest_instances WHERE quest_id = $1)`, id).Scan(&hasInstances)
	return !hasInstances, err
}

func (s *PGStore) CanActivateQuest(ctx context.Context, id string) (bool, error) {
	var can bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM deactivated_quests d
			WHERE d.quest_id = $1
			AND NOT EXISTS (SELECT 1 FROM quest_updates u WHERE u.previous_quest_id = $1)
		)`, id).Scan(&can)
	return can, err
}

func (s *PGStore) ActivateQuest(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM deactivated_quests WHERE quest_id = $1`, id)
	return err
}

func (s *PGStore) DeactivateQuest(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO deactivated_quests (quest_id) VALUES ($1) ON CONFLICT (quest_id) DO NOTHING`, id)
	if isForeignKeyViolation(err) {
		return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", id)
	}
	return err
}

func (s *PGStore) GetOldQuestVersions(ctx context.Context, id string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT previous_quest_id FROM quest_updates WHERE quest_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var versions []string
	for rows.Next() {
		var prev string
		if err := rows.Scan(&prev); err != nil {
			return nil, err
		}
		versions = append(versions, prev)
	}
	return versions, rows.Err()
}

func (s *PGStore) StartQuest(ctx context.Context, questID, userAddress string) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quest_instances (id, quest_id, user_address) VALUES ($1, $2, $3)`,
		id, questID, quest.NormalizeAddress(userAddress))
	if err != nil {
		if isForeignKeyViolation(err) {
			return "", pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", questID)
		}
		return "", err
	}
	return id, nil
}

func (s *PGStore) AbandonQuestInstance(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO abandoned_quests (quest_instance_id) VALUES ($1) ON CONFLICT (quest_instance_id) DO NOTHING`, id)
	if isForeignKeyViolation(err) {
		return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest instance %s", id)
	}
	return err
}

func (s *PGStore) CompleteQuestInstance(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO completed_instances (quest_instance_id) VALUES ($1) ON CONFLICT (quest_instance_id) DO NOTHING`, id)
	if isForeignKeyViolation(err) {
		return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest instance %s", id)
	}
	return err
}

func (s *PGStore) IsCompletedInstance(ctx context.Context, id string) (bool, error) {
	var completed bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM completed_instances WHERE quest_instance_id = $1)`, id).Scan(&completed)
	return completed, err
}

func (s *PGStore) IsActiveQuestInstance(ctx context.Context, id string) (bool, error) {
	var active bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM quest_instances i
			WHERE i.id = $1
			AND NOT EXISTS (SELECT 1 FROM abandoned_quests a WHERE a.quest_instance_id = i.id)
			AND NOT EXISTS (SELECT 1 FROM completed_instances c WHERE c.quest_instance_id = i.id)
		)`, id).Scan(&active)
	return active, err
}

const instanceColumns = `i.id, i.quest_id, i.user_address, i.start_timestamp FROM quest_instances i`

func scanInstance(row pgx.Row) (*quest.Instance, error) {
	var inst quest.Instance
	var startedAt time.Time
	if err := row.Scan(&inst.ID, &inst.QuestID, &inst.UserAddress, &startedAt); err != nil {
		return nil, err
	}
	inst.StartTimestamp = startedAt.Unix()
	return &inst, nil
}

func (s *PGStore) GetQuestInstance(ctx context.Context, id string) (*quest.Instance, error) {
	inst, err := scanInstance(s.pool.QueryRow(ctx, `SELECT `+instanceColumns+` WHERE i.id = $1`, id))
	if err != nil {
		if errNoRows(err) {
			return nil, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest instance %s", id)
		}
		return nil, err
	}
	return inst, nil
}

const activeInstanceFilter = ` AND NOT EXISTS (SELECT 1 FROM abandoned_quests a WHERE a.quest_instance_id = i.id)
	AND NOT EXISTS (SELECT 1 FROM completed_instances c WHERE c.quest_instance_id = i.id)`

func (s *PGStore) GetActiveUserQuestInstances(ctx context.Context, userAddress string) ([]*quest.Instance, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+instanceColumns+` WHERE i.user_address = $1`+activeInstanceFilter+` ORDER BY i.start_timestamp`,
		quest.NormalizeAddress(userAddress))
	if err != nil {
		return nil, err
	}
	return collectInstances(rows)
}

func (s *PGStore) GetActiveQuestInstancesByQuestID(ctx context.Context, questID string, offset, limit int) ([]*quest.Instance, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+instanceColumns+` WHERE i.quest_id = $1`+activeInstanceFilter+
			` ORDER BY i.start_timestamp OFFSET $2 LIMIT $3`,
		questID, offset, limit)
	if err != nil {
		return nil, err
	}
	return collectInstances(rows)
}

func (s *PGStore) CountActiveQuestInstancesByQuestID(ctx context.Context, questID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quest_instances i WHERE i.quest_id = $1`+activeInstanceFilter, questID).Scan(&count)
	return count, err
}

func collectInstances(rows pgx.Rows) ([]*quest.Instance, error) {
	defer rows.Close()
	var instances []*quest.Instance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

func (s *PGStore) RemoveInstanceFromCompletedInstances(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM completed_instances WHERE quest_instance_id = $1`, id)
	return err
}

func (s *PGStore) AddEvent(ctx context.Context, ev *Event) error {
	at := time.Now()
	if ev.Timestamp > 0 {
		at = time.Unix(ev.Timestamp, 0)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO events (id, user_address, event, quest_instance_id, timestamp)
		 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id, quest_instance_id) DO NOTHING`,
		ev.ID, quest.NormalizeAddress(ev.UserAddress), ev.Payload, ev.InstanceID, at)
	if isForeignKeyViolation(err) {
		return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest instance %s", ev.InstanceID)
	}
	return err
}

func (s *PGStore) GetEvents(ctx context.Context, instanceID string) ([]*Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_address, event, quest_instance_id, timestamp
		 FROM events WHERE quest_instance_id = $1 ORDER BY timestamp, id`, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []*Event
	for rows.Next() {
		var ev Event
		var at time.Time
		if err := rows.Scan(&ev.ID, &ev.UserAddress, &ev.Payload, &ev.InstanceID, &at); err != nil {
			return nil, err
		}
		ev.Timestamp = at.Unix()
		events = append(events, &ev)
	}
	return events, rows.Err()
}

func (s *PGStore) RemoveEvent(ctx context.Context, eventID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	return err
}

func (s *PGStore) RemoveEventsForInstance(ctx context.Context, instanceID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM events WHERE quest_instance_id = $1`, instanceID)
	return err
}

func (s *PGStore) AddRewardHookToQuest(ctx context.Context, questID string, hook *quest.RewardHook) error {
	var body []byte
	if len(hook.RequestBody) > 0 {
		var err error
		body, err = json.Marshal(hook.RequestBody)
		if err != nil {
			return err
		}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quest_reward_hooks (quest_id, webhook_url, request_body) VALUES ($1, $2, $3)
		 ON CONFLICT (quest_id) DO UPDATE SET webhook_url = $2, request_body = $3`,
		questID, hook.WebhookURL, body)
	if isForeignKeyViolation(err) {
		return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", questID)
	}
	return err
}

func (s *PGStore) GetQuestRewardHook(ctx context.Context, questID string) (*quest.RewardHook, error) {
	var hook quest.RewardHook
	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT webhook_url, request_body FROM quest_reward_hooks WHERE quest_id = $1`, questID).
		Scan(&hook.WebhookURL, &body)
	if err != nil {
		if errNoRows(err) {
			return nil, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "reward hook for quest %s", questID)
		}
		return nil, err
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &hook.RequestBody); err != nil {
			return nil, err
		}
	}
	return &hook, nil
}

func (s *PGStore) AddRewardItemsToQuest(ctx context.Context, questID string, items []quest.RewardItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	for _, item := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO quest_reward_items (quest_id, name, image_url) VALUES ($1, $2, $3)`,
			questID, item.Name, item.ImageURL)
		if err != nil {
			if isForeignKeyViolation(err) {
				return pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", questID)
			}
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PGStore) GetQuestRewardItems(ctx context.Context, questID string) ([]quest.RewardItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, image_url FROM quest_reward_items WHERE quest_id = $1 ORDER BY name`, questID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []quest.RewardItem
	for rows.Next() {
		var item quest.RewardItem
		if err := rows.Scan(&item.Name, &item.ImageURL); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PGStore) IsQuestCreator(ctx context.Context, questID, address string) (bool, error) {
	var isCreator bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quests WHERE id = $1 AND creator_address = $2)`,
		questID, quest.NormalizeAddress(address)).Scan(&isCreator)
	return isCreator, err
}

func (s *PGStore) GetQuestStats(ctx context.Context, questID string) (*QuestStats, error) {
	var stats QuestStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(DISTINCT i.user_address) FROM quest_instances i WHERE i.quest_id = $1`+activeInstanceFilter+`),
			(SELECT COUNT(*) FROM abandoned_quests a JOIN quest_instances i ON i.id = a.quest_instance_id WHERE i.quest_id = $1),
			(SELECT COUNT(*) FROM completed_instances c JOIN quest_instances i ON i.id = c.quest_instance_id WHERE i.quest_id = $1),
			(SELECT COUNT(*) FROM quest_instances i WHERE i.quest_id = $1 AND i.start_timestamp > now() - interval '24 hours')
	`, questID).Scan(&stats.ActivePlayers, &stats.Abandoned, &stats.Completed, &stats.StartedLast24h)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func errNoRows(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}
