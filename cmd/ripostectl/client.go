package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/riposte/riposte/internal/conversation"
)

func runConversation(apiURL, trackingID string, raw bool, out io.Writer) error {
	resp, err := http.Get(apiURL + "/api/conversations/" + trackingID)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	if raw {
		_, err = io.Copy(out, resp.Body)
		return err
	}

	var payload struct {
		TrackingID string              `json:"tracking_id"`
		Stage      string              `json:"stage"`
		Count      int                 `json:"count"`
		Turns      []conversation.Turn `json:"turns"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Fprintf(out, "Conversation %s  stage=%s  turns=%d\n", payload.TrackingID, payload.Stage, payload.Count)
	for i, turn := range payload.Turns {
		fmt.Fprintf(out, "\n[%d] %s  (%s)\n", i+1, turn.Timestamp.Format("2006-01-02 15:04:05"), turn.State)
		if turn.LeadMessage != nil {
			fmt.Fprintf(out, "  Lead:  %s\n", *turn.LeadMessage)
		}
		if turn.AIResponse != nil {
			fmt.Fprintf(out, "  Agent: %s\n", *turn.AIResponse)
		}
	}
	return nil
}

func runEvent(apiURL, trackingID, typ, actor, message string, out io.Writer) error {
	payload := map[string]interface{}{
		"tracking_id": trackingID,
		"type":        typ,
		"actor":       actor,
	}
	if message != "" {
		payload["message"] = message
	}
	body, _ := json.Marshal(payload)

	resp, err := http.Post(apiURL+"/webhooks/events", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	_, err = io.Copy(out, resp.Body)
	return err
}
