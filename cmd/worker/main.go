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

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quest-platform/internal/app"
	"quest-platform/internal/app/worker"
	"quest-platform/pkg/config"
)

func main() {
	// 加载配置
	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化基础设施与应用
	ctx := context.Background()
	bootstrap, err := app.NewBootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	application, err := worker.NewApp(ctx, bootstrap)
	if err != nil {
		log.Fatalf("初始化应用失败: %v", err)
	}

	// 启动应用
	if err := application.Start(); err != nil {
		log.Fatalf("启动应用失败: %v", err)
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Printf("关闭应用失败: %v", err)
	}
	bootstrap.Close()

	fmt.Println("应用已关闭")
}
