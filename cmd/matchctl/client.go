package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// recommendCmd runs an ad-hoc query against a running matchd server
var recommendCmd = &cobra.Command{
	Use:   "recommend <description>",
	Short: "Run a recommendation query against a matchd server",
	Long: `Run a recommendation query against a running matchd server and
print the ranked matches.

Examples:
  matchctl recommend "Safe family car for five, mid budget"

  # Use a different server
  matchctl recommend --server http://localhost:8080 "city hatchback"`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check matchd server health",
	Long: `Check the health status of the matchd HTTP server.

Examples:
  matchctl health

  matchctl health --server http://localhost:8080`,
	RunE: runHealth,
}

// RecommendRequest matches internal/http/server.go RecommendRequest
type RecommendRequest struct {
	UserDescription string `json:"user_description"`
}

// recommendReply mirrors the wire shape of a recommendation response
type recommendReply struct {
	Persona struct {
		Label        string   `json:"label"`
		PrimaryNeeds []string `json:"primary_needs"`
		Constraints  []string `json:"constraints"`
	} `json:"persona"`
	Matches []struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		Score     int      `json:"score"`
		Reasons   []string `json:"reasons"`
		PriceBand string   `json:"price_band"`
		BodyType  string   `json:"body_type"`
	} `json:"matches"`
}

// HealthResponse matches internal/http/server.go HealthResponse
type HealthResponse struct {
	Status string `json:"status"`
}

func runRecommend(_ *cobra.Command, args []string) error {
	body, err := json.Marshal(RecommendRequest{UserDescription: args[0]})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(serverURL+"/api/v1/recommend", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("calling matchd: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("matchd returned %d: %s", resp.StatusCode, data)
	}

	var reply recommendReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	fmt.Printf("Persona: %s\n", reply.Persona.Label)
	if len(reply.Persona.PrimaryNeeds) > 0 {
		fmt.Printf("Primary needs: %v\n", reply.Persona.PrimaryNeeds)
	}
	if len(reply.Persona.Constraints) > 0 {
		fmt.Printf("Constraints: %v\n", reply.Persona.Constraints)
	}
	fmt.Println()

	if len(reply.Matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for i, m := range reply.Matches {
		fmt.Printf("%d. %s (score %d)\n", i+1, m.Name, m.Score)
		if m.BodyType != "" || m.PriceBand != "" {
			fmt.Printf("   %s, %s band\n", m.BodyType, m.PriceBand)
		}
		for _, r := range m.Reasons {
			fmt.Printf("   %s\n", r)
		}
	}
	return nil
}

func runHealth(_ *cobra.Command, _ []string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		return fmt.Errorf("calling matchd: %w", err)
	}
	defer resp.Body.Close()

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	fmt.Printf("Status: %s\n", health.Status)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy (%d)", resp.StatusCode)
	}
	return nil
}
