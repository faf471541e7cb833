package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"quest-platform/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}
	cmd := os.Args[1]
	args := os.Args[2:]
	switch cmd {
	case "version":
		fmt.Println("quest-platform cli 0.1.0")
	case "health":
		runHealth()
	case "config":
		runConfig()
	case "server":
		if len(args) > 0 && args[0] == "start" {
			runServerStart()
		} else {
			fmt.Fprintf(os.Stderr, "Usage: questctl server start\n")
			os.Exit(1)
		}
	case "worker":
		if len(args) > 0 && args[0] == "start" {
			runWorkerStart()
		} else {
			fmt.Fprintf(os.Stderr, "Usage: questctl worker start\n")
			os.Exit(1)
		}
	case "create":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: questctl create <file.json>\n")
			os.Exit(1)
		}
		runCreate(args[0])
	case "list":
		runList(args)
	case "get":
		requireID(args, "questctl get <quest_id>")
		runGet(args[0])
	case "activate":
		requireID(args, "questctl activate <quest_id>")
		runActivate(args[0])
	case "deactivate":
		requireID(args, "questctl deactivate <quest_id>")
		runDeactivate(args[0])
	case "stats":
		requireID(args, "questctl stats <quest_id>")
		runStats(args[0])
	case "reward":
		requireID(args, "questctl reward <quest_id>")
		runReward(args[0])
	case "instances":
		requireID(args, "questctl instances <quest_id>")
		runInstances(args[0])
	case "instance":
		requireID(args, "questctl instance <instance_id>")
		runInstance(args[0])
	case "state":
		requireID(args, "questctl state <instance_id>")
		runState(args[0])
	case "reset":
		requireID(args, "questctl reset <instance_id>")
		runReset(args[0])
	case "event":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "Usage: questctl event <instance_id> <file.json>\n")
			os.Exit(1)
		}
		runEvent(args[0], args[1])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: questctl <command> [args]")
	fmt.Println("  version                    - 显示版本")
	fmt.Println("  health                     - 探活 API 服务")
	fmt.Println("  config                     - 显示配置概要")
	fmt.Println("  server start               - 启动 API 服务（go run ./cmd/api）")
	fmt.Println("  worker start               - 启动 Worker 服务（go run ./cmd/worker）")
	fmt.Println("  create <file.json>         - 从 JSON 文件创建任务，返回 quest_id")
	fmt.Println("  list [offset] [limit]      - 列出激活任务")
	fmt.Println("  get <quest_id>             - 查看任务详情")
	fmt.Println("  activate <quest_id>        - 激活任务")
	fmt.Println("  deactivate <quest_id>      - 停用任务")
	fmt.Println("  stats <quest_id>           - 查看任务统计")
	fmt.Println("  reward <quest_id>          - 查看任务奖励（含回调配置）")
	fmt.Println("  instances <quest_id>       - 列出任务实例")
	fmt.Println("  instance <instance_id>     - 查看实例详情")
	fmt.Println("  state <instance_id>        - 查看实例进度状态")
	fmt.Println("  reset <instance_id>        - 重置实例进度")
	fmt.Println("  event <instance_id> <file> - 从 JSON 文件投递事件")
	fmt.Println()
	fmt.Println("环境变量: QUEST_API_URL（默认 http://localhost:3000）、QUEST_PRIVATE_KEY（签名私钥）")
}

func requireID(args []string, usage string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
		os.Exit(1)
	}
}

func runHealth() {
	if err := healthCheck(); err != nil {
		fmt.Fprintf(os.Stderr, "健康检查失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("ok")
}

func runConfig() {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("server.host=%s\n", cfg.Server.Host)
	fmt.Printf("server.http_port=%d\n", cfg.Server.HTTPPort)
	fmt.Printf("server.ws_port=%d\n", cfg.Server.WSPort)
	fmt.Printf("database.type=%s\n", cfg.Database.Type)
	fmt.Printf("redis.queue=%s\n", cfg.Redis.Queue)
	fmt.Printf("redis.channel=%s\n", cfg.Redis.Channel)
}

func runServerStart() {
	c := exec.Command("go", "run", "./cmd/api")
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Dir = "."
	if err := c.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "server start: %v\n", err)
		os.Exit(1)
	}
}

func runWorkerStart() {
	c := exec.Command("go", "run", "./cmd/worker")
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Dir = "."
	if err := c.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker start: %v\n", err)
		os.Exit(1)
	}
}

func runCreate(file string) {
	id, err := createQuest(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建任务失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(id)
}

func runList(args []string) {
	offset, limit := 0, 50
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			offset = n
		}
	}
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			limit = n
		}
	}
	quests, err := listQuests(offset, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "列出任务失败: %v\n", err)
		os.Exit(1)
	}
	if len(quests) == 0 {
		fmt.Println("[]")
		return
	}
	fmt.Println(prettyJSON(quests))
}

func runGet(id string) {
	q, err := getQuest(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "查看任务失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(q))
}

func runActivate(id string) {
	out, err := activateQuest(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "激活失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}

func runDeactivate(id string) {
	out, err := deactivateQuest(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "停用失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}

func runStats(id string) {
	out, err := getQuestStats(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "查看统计失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}

func runReward(id string) {
	out, err := getQuestReward(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "查看奖励失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}

func runInstances(id string) {
	out, err := listQuestInstances(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "列出实例失败: %v\n", err)
		os.Exit(1)
	}
	if len(out) == 0 {
		fmt.Println("[]")
		return
	}
	fmt.Println(prettyJSON(out))
}

func runInstance(id string) {
	out, err := getInstance(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "查看实例失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}

func runState(id string) {
	out, err := getInstanceState(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "查看状态失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}

func runReset(id string) {
	out, err := resetInstance(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "重置失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(out))
}

func runEvent(id, file string) {
	eventID, err := postInstanceEvent(id, file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "投递事件失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(eventID)
}
