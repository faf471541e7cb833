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

// Schema 全量建表语句，可重复执行。
// cmd/devops migrate 与 database.migrate=true 时由 EnsureSchema 应用。
const Schema = `
CREATE TABLE IF NOT EXISTS quests (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    definition BYTEA NOT NULL,
    creator_address TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS deactivated_quests (
    quest_id UUID PRIMARY KEY REFERENCES quests (id) ON DELETE CASCADE,
    deactivated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quest_updates (
    id UUID PRIMARY KEY,
    quest_id UUID NOT NULL REFERENCES quests (id) ON DELETE CASCADE,
    previous_quest_id UUID NOT NULL REFERENCES quests (id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS quest_updates_quest_id_idx ON quest_updates (quest_id);
CREATE INDEX IF NOT EXISTS quest_updates_previous_quest_id_idx ON quest_updates (previous_quest_id);

CREATE TABLE IF NOT EXISTS quest_instances (
    id UUID PRIMARY KEY,
    quest_id UUID NOT NULL REFERENCES quests (id) ON DELETE CASCADE,
    user_address TEXT NOT NULL,
    start_timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS quest_instances_user_address_idx ON quest_instances (user_address);
CREATE INDEX IF NOT EXISTS quest_instances_quest_id_idx ON quest_instances (quest_id);

CREATE TABLE IF NOT EXISTS abandoned_quests (
    quest_instance_id UUID PRIMARY KEY REFERENCES quest_instances (id) ON DELETE CASCADE,
    abandoned_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS completed_instances (
    quest_instance_id UUID PRIMARY KEY REFERENCES quest_instances (id) ON DELETE CASCADE,
    completed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
    id UUID NOT NULL,
    user_address TEXT NOT NULL,
    event BYTEA NOT NULL,
    quest_instance_id UUID NOT NULL REFERENCES quest_instances (id) ON DELETE CASCADE,
    timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (id, quest_instance_id)
);
CREATE INDEX IF NOT EXISTS events_quest_instance_id_idx ON events (quest_instance_id);

CREATE TABLE IF NOT EXISTS quest_reward_hooks (
    quest_id UUID PRIMARY KEY REFERENCES quests (id) ON DELETE CASCADE,
    webhook_url TEXT NOT NULL,
    request_body JSONB
);

CREATE TABLE IF NOT EXISTS quest_reward_items (
    quest_id UUID NOT NULL REFERENCES quests (id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS quest_reward_items_quest_id_idx ON quest_reward_items (quest_id);
`
