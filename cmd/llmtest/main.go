// Command llmtest checks LLM provider connectivity with a sample
// appointment-booking exchange. Useful when wiring new credentials.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"

	"github.com/wolfman30/medoffice-ai-agent/cmd/mainconfig"
	appconfig "github.com/wolfman30/medoffice-ai-agent/internal/config"
	"github.com/wolfman30/medoffice-ai-agent/internal/nlu"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := appconfig.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req := nlu.LLMRequest{
		System: []string{"You are a friendly medical office assistant. Keep responses brief and helpful."},
		Messages: []nlu.ChatMessage{
			{Role: nlu.ChatRoleUser, Content: "Hi, I'd like to book an appointment for a skin rash."},
			{Role: nlu.ChatRoleAssistant, Content: "I'd be happy to help you book an appointment. May I have your full name?"},
			{Role: nlu.ChatRoleUser, Content: "Sure, it's Maria Garcia."},
		},
		MaxTokens:   200,
		Temperature: 0.7,
	}

	fmt.Println("LLM Provider Test")
	failures := 0

	if cfg.BedrockModelID != "" {
		fmt.Println("\n[1] Testing Bedrock...")
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			fmt.Printf("    FAIL: load AWS config: %v\n", err)
			failures++
		} else {
			client := nlu.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
			bedrockReq := req
			bedrockReq.Model = cfg.BedrockModelID
			run("Bedrock", client, ctx, bedrockReq, &failures)
		}
	} else {
		fmt.Println("\n[1] Skipping Bedrock (BEDROCK_MODEL_ID not set)")
	}

	if cfg.GeminiAPIKey != "" {
		fmt.Println("\n[2] Testing Gemini...")
		client, err := nlu.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			fmt.Printf("    FAIL: create Gemini client: %v\n", err)
			failures++
		} else {
			defer client.Close()
			run("Gemini", client, ctx, req, &failures)
		}
	} else {
		fmt.Println("\n[2] Skipping Gemini (GEMINI_API_KEY not set)")
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func run(name string, client nlu.LLMClient, ctx context.Context, req nlu.LLMRequest, failures *int) {
	start := time.Now()
	resp, err := client.Complete(ctx, req)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		fmt.Printf("    FAIL: %s error: %v\n", name, err)
		*failures++
		return
	}
	fmt.Printf("    OK (%v, %d tokens):\n    %s\n", elapsed, resp.Usage.TotalTokens, resp.Text)
}
