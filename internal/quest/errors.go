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

package quest

import (
	"errors"
	"fmt"
)

// 定义任务域错误。错误文案会透出到 RPC/HTTP 响应，保持英文。
var (
	ErrNotUUID             = errors.New("id is not a valid uuid")
	ErrNotQuestCreator     = errors.New("address is not the quest creator")
	ErrNotInstanceOwner    = errors.New("address does not own this quest instance")
	ErrQuestAlreadyStarted = errors.New("quest already started by this address")
	ErrQuestNotActivable   = errors.New("quest cannot be activated")
	ErrQuestNotUpdatable   = errors.New("quest has started instances and is not updatable")
	ErrQuestDeactivated    = errors.New("quest is currently deactivated")
	ErrQuestHasNoReward    = errors.New("quest has no reward")
)

// ValidationError 模板校验错误，Field 指明违规元素
type ValidationError struct {
	Field   string
	Message string
}

// Error 实现 error 接口
func (e *ValidationError) Error() string {
	return fmt.Sprintf("quest validation: %s: %s", e.Field, e.Message)
}

// NewValidationError 创建新的校验错误
func NewValidationError(field string, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidationError 检查是否为校验错误
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// GetValidationError 获取校验错误
func GetValidationError(err error) (*ValidationError, bool) {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr, true
	}
	return nil, false
}
