package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/derma-consult/internal/bootstrap"
	"github.com/kirillkom/derma-consult/internal/config"
	"github.com/kirillkom/derma-consult/internal/core/domain"
	"github.com/kirillkom/derma-consult/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stdout carries the MCP protocol, so all logging goes to stderr.
	logger := logging.NewJSONLoggerTo(os.Stderr, cfg.ServiceName, cfg.LogLevel)
	app, err := bootstrap.NewWithLogger(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	go func() {
		if err := app.WatchCorpusReload(ctx); err != nil {
			log.Printf("corpus reload subscription error: %v", err)
		}
	}()

	srv := server.NewMCPServer(
		"derma-consult",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	consultTool := mcp.NewTool("consult",
		mcp.WithDescription("피부과 시술 상담 질문에 답변합니다. 참고 문헌과 병원 목록을 반영한 상담 답변을 반환합니다."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("사용자 상담 질문"),
		),
		mcp.WithString("history",
			mcp.Description("이전 대화 기록. 줄마다 '역할: 내용' 형식 (역할은 user 또는 model)"),
		),
		mcp.WithString("mode",
			mcp.Description("상담 모드"),
			mcp.Enum(string(domain.ModeFull), string(domain.ModeSimple)),
		),
	)

	srv.AddTool(consultTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		reply, err := app.ConsultUC.Consult(ctx, domain.ConsultationRequest{
			Query:   query,
			History: parseHistory(req.GetString("history", "")),
			Mode:    domain.ConsultationMode(req.GetString("mode", "")),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(reply.Text), nil
	})

	log.Printf("mcp server listening on stdio")
	if err := server.ServeStdio(srv); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}

// parseHistory reads newline-separated "역할: 내용" lines. A line without a
// role prefix counts as a user turn.
func parseHistory(raw string) []domain.ConversationTurn {
	var turns []domain.ConversationTurn
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		role, content, found := strings.Cut(line, ":")
		if !found {
			turns = append(turns, domain.ConversationTurn{Role: domain.RoleUser, Content: line})
			continue
		}
		role = strings.TrimSpace(role)
		if role == "" {
			role = domain.RoleUser
		}
		turns = append(turns, domain.ConversationTurn{Role: role, Content: strings.TrimSpace(content)})
	}
	return turns
}
