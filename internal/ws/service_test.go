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

package ws

import (
	"errors"
	"fmt"
	"testing"

	"quest-platform/internal/quest"
	pkgerrors "quest-platform/pkg/errors"
)

func TestErrorCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code uint32
	}{
		{"validation", quest.NewValidationError("steps", "must not be empty"), codeValidation},
		{"not uuid", quest.ErrNotUUID, codeNotUUID},
		{"not found", pkgerrors.Wrapf(pkgerrors.ErrNotFound, "quest %s", "q1"), codeNotFound},
		{"not creator", quest.ErrNotQuestCreator, codeNotOwner},
		{"not owner", quest.ErrNotInstanceOwner, codeNotOwner},
		{"already started", quest.ErrQuestAlreadyStarted, codeQuestAlreadyStarted},
		{"deactivated", quest.ErrQuestDeactivated, codeQuestDeactivated},
		{"wrapped deactivated", fmt.Errorf("start quest: %w", quest.ErrQuestDeactivated), codeQuestDeactivated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := errorCode(tt.err)
			if code != tt.code {
				t.Fatalf("code = %d, want %d", code, tt.code)
			}
			if msg != tt.err.Error() {
				t.Fatalf("message = %q, want %q", msg, tt.err.Error())
			}
		})
	}
}

func TestErrorCodeHidesInternalDetails(t *testing.T) {
	code, msg := errorCode(errors.New("pg: connection refused"))
	if code != codeInternal {
		t.Fatalf("code = %d, want %d", code, codeInternal)
	}
	if msg != "internal server error" {
		t.Fatalf("message = %q leaks internals", msg)
	}
}
