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

// devops 运维工具：建表与依赖连通性检查。
// 使用：go run ./cmd/devops migrate [配置路径]；go run ./cmd/devops check [配置路径]。
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"quest-platform/internal/app"
	"quest-platform/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	configPath := "configs/api.yaml"
	if len(os.Args) > 2 {
		configPath = os.Args[2]
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	switch os.Args[1] {
	case "migrate":
		runMigrate(cfg)
	case "check":
		runCheck(cfg)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: devops <migrate|check> [config path]")
	fmt.Println("  migrate - 连接 Postgres 并执行建表语句")
	fmt.Println("  check   - 检查 Postgres 与 Redis 连通性")
	fmt.Println("默认配置文件 configs/api.yaml")
}

func runMigrate(cfg *config.Config) {
	if cfg.Database.Type == "memory" {
		log.Fatalf("database.type=memory 无需建表")
	}
	cfg.Database.Migrate = true
	b, err := app.NewBootstrap(context.Background(), cfg)
	if err != nil {
		log.Fatalf("建表失败: %v", err)
	}
	b.Close()
	fmt.Println("建表完成")
}

func runCheck(cfg *config.Config) {
	cfg.Database.Migrate = false
	b, err := app.NewBootstrap(context.Background(), cfg)
	if err != nil {
		log.Fatalf("依赖检查失败: %v", err)
	}
	b.Close()
	if cfg.Database.Type == "memory" {
		fmt.Println("memory 模式无外部依赖")
	} else {
		fmt.Println("postgres ok")
		fmt.Println("redis ok")
	}
	fmt.Println("依赖检查通过")
}
