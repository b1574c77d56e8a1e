package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"concierge-llm/internal/config"
	"concierge-llm/internal/domain"
	"concierge-llm/internal/llm"
	"concierge-llm/internal/providers"
	"concierge-llm/internal/repository"
	"concierge-llm/internal/service"
)

// CLI de demo: corre el orquestador completo con colaboradores estáticos y
// mensajes en memoria, sin Postgres ni Redis.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	messageRepo := repository.NewMemoryMessageRepository()
	knowledge := providers.NewStaticKnowledge()
	registry := service.NewSessionRegistry(messageRepo, logger)
	orchestrator := service.NewOrchestrator(
		providers.NewStaticWeather(),
		providers.NewStaticClock(),
		providers.NewStaticPlaces(),
		knowledge,
		registry,
		logger,
	)

	var completions llm.CompletionClient
	if cfg.LLMAPIKey != "" {
		completions = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	} else {
		fmt.Println("LLM_API_KEY no configurada: las decisiones de retrieval usan el fallback.")
		completions = &llm.MockClient{Response: "no structured response available"}
	}
	retrieval := service.NewRetrievalService(completions, knowledge, logger)

	session := registry.StartConversation(ctx, nil).Value()
	fmt.Printf("Sesión %s iniciada.\n", session.ID)
	fmt.Println("Comandos: ask <ciudad> | search <query> | decide <mensaje> | history | end | quit")

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		command, arg, _ := strings.Cut(strings.TrimSpace(line), " ")

		switch command {
		case "quit", "exit":
			return

		case "ask":
			out := orchestrator.GatherAggregate(ctx, arg, session.ID)
			if out.IsError() {
				fmt.Printf("error: %v\n", out.Err())
				continue
			}
			for field, value := range out.Value() {
				fmt.Printf("  %s: %v\n", field, value)
			}

		case "search":
			out := retrieval.SearchWithFiltering(ctx, arg, cfg.ScoreThreshold, 20, nil)
			results := out.Value()
			if len(results) == 0 {
				fmt.Println("  sin resultados")
				continue
			}
			for _, chunk := range results {
				if chunk.Score != nil {
					fmt.Printf("  [%.2f] %s\n", *chunk.Score, chunk.Text)
					continue
				}
				fmt.Printf("  [ -- ] %s\n", chunk.Text)
			}

		case "decide":
			history := registry.GetHistory(ctx, session.ID, 10).Value()
			out := retrieval.DecideQuery(ctx, history, arg, nil)
			if out.IsError() {
				fmt.Printf("error: %v\n", out.Err())
				continue
			}
			decision := out.Value()
			fmt.Printf("  query: %q\n  reasoning: %s\n", decision.Query(), decision.Reasoning)
			saved := registry.SaveConversation(ctx, []domain.Message{
				{Role: domain.RoleUser, Content: arg},
			}, session.ID)
			if saved.IsError() {
				fmt.Printf("warning: no se pudo guardar el turno: %v\n", saved.Err())
			}

		case "history":
			out := registry.GetHistory(ctx, session.ID, 50)
			if out.IsError() {
				fmt.Printf("error: %v\n", out.Err())
				continue
			}
			for _, msg := range out.Value() {
				fmt.Printf("  [%s] %s\n", msg.Role, msg.Content)
			}

		case "end":
			out := registry.EndConversation(ctx, session.ID)
			if out.IsError() {
				fmt.Printf("error: %v\n", out.Err())
				continue
			}
			fmt.Println("Sesión terminada.")
			session = registry.StartConversation(ctx, nil).Value()
			fmt.Printf("Sesión %s iniciada.\n", session.ID)

		default:
			fmt.Println("Comando desconocido.")
		}
	}
}
