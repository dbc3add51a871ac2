package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	defaultBaseURL = "http://localhost:8080"
	pollEvery      = 5 * time.Second
	giveUpAfter    = 45 * time.Minute
)

type statusResponse struct {
	TaskID         string          `json:"task_id"`
	TaskStatus     string          `json:"task_status"`
	TaskResult     json.RawMessage `json:"task_result"`
	EvidenceStatus string          `json:"evidence_status"`
	Message        *string         `json:"message"`
}

func main() {
	baseURL := os.Getenv("ANNOTATOR_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	fmt.Println("Starting Integration Test...")

	// 1. Submit a batch
	fmt.Println("1. Submitting TP53/MDM2 and BRCA1/BRCA2...")
	payload := map[string]interface{}{
		"data": []map[string]interface{}{
			{
				"source": map[string]string{"id": "NCBIGene:7157", "name": "TP53"},
				"target": map[string]string{"id": "NCBIGene:4193", "name": "MDM2"},
			},
			{
				"source": map[string]string{"id": "NCBIGene:672", "name": "BRCA1"},
				"target": map[string]string{"id": "NCBIGene:675", "name": "BRCA2"},
			},
		},
		"directed": false,
		"timeout":  (30 * time.Minute).Seconds(),
	}

	var accepted struct {
		TaskID string `json:"task_id"`
	}
	if err := sendRequest(baseURL, http.MethodPost, "/run", payload, &accepted); err != nil || accepted.TaskID == "" {
		fmt.Printf("FAILED: Submit batch: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("PASSED: Submit batch (task %s)\n", accepted.TaskID)

	// 2. Poll until the worker finishes
	fmt.Println("2. Polling task status...")
	deadline := time.Now().Add(giveUpAfter)
	for {
		var status statusResponse
		if err := sendRequest(baseURL, http.MethodGet, "/status/"+accepted.TaskID, nil, &status); err != nil {
			fmt.Printf("FAILED: Poll status: %v\n", err)
			os.Exit(1)
		}

		switch status.TaskStatus {
		case "SUCCESS":
			fmt.Printf("PASSED: Task succeeded (evidence: %s)\n", status.EvidenceStatus)
			if status.Message != nil {
				fmt.Printf("Reasoner: %s\n", *status.Message)
			}
			var out bytes.Buffer
			_ = json.Indent(&out, status.TaskResult, "", "  ")
			fmt.Println(out.String())
			return
		case "FAILURE":
			fmt.Printf("FAILED: Task failed: %s\n", string(status.TaskResult))
			os.Exit(1)
		}

		if time.Now().After(deadline) {
			fmt.Printf("FAILED: Task still %s after %s\n", status.TaskStatus, giveUpAfter)
			os.Exit(1)
		}
		time.Sleep(pollEvery)
	}
}

func sendRequest(baseURL, method, endpoint string, payload, dst interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonBytes, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := os.Getenv("ANNOTATOR_KEY"); key != "" {
		req.Header.Set("X-Annotator-Key", key)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, dst)
}
