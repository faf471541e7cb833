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

package protocol

import (
	"reflect"
	"testing"

	"quest-platform/internal/quest"
)

func TestEventCodecRoundTrip(t *testing.T) {
	ev := &quest.Event{
		ID:      "ev-1",
		Address: "0xAbCd",
		Action: &quest.Action{
			Type:       quest.ActionLocation,
			Parameters: map[string]string{"x": "10", "y": "20"},
		},
	}

	data, err := Codec{}.EncodeEvent(ev)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	got, err := Codec{}.DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}

	if got.Address != "0xabcd" {
		t.Fatalf("address = %q, want normalized 0xabcd", got.Address)
	}
	if got.ID != ev.ID || !reflect.DeepEqual(got.Action, ev.Action) {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// 无动作事件同样要走通
	data, err = Codec{}.EncodeEvent(&quest.Event{ID: "ev-2", Address: "0xabcd"})
	if err != nil {
		t.Fatalf("EncodeEvent without action: %v", err)
	}
	got, err = Codec{}.DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent without action: %v", err)
	}
	if got.Action != nil {
		t.Fatalf("action = %+v, want nil", got.Action)
	}
}

func TestDefinitionCodecRoundTrip(t *testing.T) {
	def := &quest.Definition{
		Steps: []quest.Step{
			{
				ID:          "step-1",
				Description: "reach the plaza",
				Tasks: []quest.Task{{
					ID: "t1",
					ActionItems: []quest.Action{{
						Type:       quest.ActionLocation,
						Parameters: map[string]string{"x": "0", "y": "0"},
					}},
				}},
			},
			{
				ID: "step-2",
				Tasks: []quest.Task{{
					ID:          "t2",
					Description: "wave at the crowd",
					ActionItems: []quest.Action{
						{Type: quest.ActionEmote, Parameters: map[string]string{"id": "wave"}},
						{Type: quest.ActionJump},
					},
				}},
			},
		},
		Connections: []quest.Connection{
			{StepFrom: "_START_", StepTo: "step-1"},
			{StepFrom: "step-1", StepTo: "step-2"},
			{StepFrom: "step-2", StepTo: "_END_"},
		},
	}

	data, err := Codec{}.EncodeDefinition(def)
	if err != nil {
		t.Fatalf("EncodeDefinition: %v", err)
	}
	got, err := Codec{}.DecodeDefinition(data)
	if err != nil {
		t.Fatalf("DecodeDefinition: %v", err)
	}
	if !reflect.DeepEqual(got, def) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, def)
	}
}

func TestUserUpdateCodecStateVariant(t *testing.T) {
	u := &quest.UserUpdate{
		UserAddress: "0xabc",
		State: &quest.QuestStateUpdate{
			InstanceID: "qi-1",
			QuestID:    "q-1",
			EventID:    "ev-1",
			State: &quest.State{
				CurrentSteps: map[string]quest.StepContent{
					"step-2": {
						ToDos:          []quest.Task{{ID: "t2", ActionItems: []quest.Action{{Type: quest.ActionJump}}}},
						TasksCompleted: []quest.Task{},
					},
				},
				StepsLeft:      1,
				RequiredSteps:  []string{"step-2"},
				StepsCompleted: []string{"step-1"},
			},
		},
	}

	data, err := Codec{}.EncodeUserUpdate(u)
	if err != nil {
		t.Fatalf("EncodeUserUpdate: %v", err)
	}
	got, err := Codec{}.DecodeUserUpdate(data)
	if err != nil {
		t.Fatalf("DecodeUserUpdate: %v", err)
	}
	if !reflect.DeepEqual(got, u) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, u)
	}
}

func TestUserUpdateCodecStartedVariant(t *testing.T) {
	u := &quest.UserUpdate{
		UserAddress: "0xabc",
		Started: &quest.NewQuestStarted{
			Instance: quest.Instance{
				ID:             "qi-2",
				QuestID:        "q-2",
				UserAddress:    "0xabc",
				StartTimestamp: 1700000000,
			},
			Quest: &quest.Quest{
				ID:             "q-2",
				Name:           "plaza tour",
				CreatorAddress: "0xcreator",
				Active:         true,
				CreatedAt:      1690000000,
				Definition: quest.Definition{
					Steps: []quest.Step{{
						ID:    "s1",
						Tasks: []quest.Task{{ID: "t1", ActionItems: []quest.Action{{Type: quest.ActionJump}}}},
					}},
					Connections: []quest.Connection{
						{StepFrom: "_START_", StepTo: "s1"},
						{StepFrom: "s1", StepTo: "_END_"},
					},
				},
			},
			State: &quest.State{
				CurrentSteps:  map[string]quest.StepContent{},
				StepsLeft:     1,
				RequiredSteps: []string{"s1"},
			},
		},
	}

	data, err := Codec{}.EncodeUserUpdate(u)
	if err != nil {
		t.Fatalf("EncodeUserUpdate: %v", err)
	}
	got, err := Codec{}.DecodeUserUpdate(data)
	if err != nil {
		t.Fatalf("DecodeUserUpdate: %v", err)
	}

	if got.Started == nil {
		t.Fatalf("started = nil, update %+v", got)
	}
	if got.Started.Instance != u.Started.Instance {
		t.Fatalf("instance = %+v, want %+v", got.Started.Instance, u.Started.Instance)
	}
	if got.Started.Quest == nil || got.Started.Quest.Name != "plaza tour" || !got.Started.Quest.Active {
		t.Fatalf("quest = %+v", got.Started.Quest)
	}
	if len(got.Started.Quest.Definition.Steps) != 1 || len(got.Started.Quest.Definition.Connections) != 2 {
		t.Fatalf("definition = %+v", got.Started.Quest.Definition)
	}
	if got.Started.State == nil || got.Started.State.StepsLeft != 1 {
		t.Fatalf("state = %+v", got.Started.State)
	}
}

func TestUserUpdateCodecTerminalVariants(t *testing.T) {
	completed := &quest.UserUpdate{
		UserAddress: "0xabc",
		Completed:   &quest.QuestCompleted{InstanceID: "qi-1", QuestID: "q-1", QuestName: "plaza tour"},
	}
	data, err := Codec{}.EncodeUserUpdate(completed)
	if err != nil {
		t.Fatalf("EncodeUserUpdate completed: %v", err)
	}
	got, err := Codec{}.DecodeUserUpdate(data)
	if err != nil {
		t.Fatalf("DecodeUserUpdate completed: %v", err)
	}
	if !reflect.DeepEqual(got, completed) {
		t.Fatalf("completed mismatch: %+v", got)
	}

	ignored := &quest.UserUpdate{
		UserAddress: "0xabc",
		Ignored:     &quest.EventIgnored{EventID: "ev-1", Reason: "no active quest instances"},
	}
	data, err = Codec{}.EncodeUserUpdate(ignored)
	if err != nil {
		t.Fatalf("EncodeUserUpdate ignored: %v", err)
	}
	got, err = Codec{}.DecodeUserUpdate(data)
	if err != nil {
		t.Fatalf("DecodeUserUpdate ignored: %v", err)
	}
	if !reflect.DeepEqual(got, ignored) {
		t.Fatalf("ignored mismatch: %+v", got)
	}
}
