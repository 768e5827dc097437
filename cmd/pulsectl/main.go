// Command pulsectl is a smoke-test client for a running pulsed
// instance: it creates a batch of monitors and, with -delete, waits
// 30 seconds and then tears them down.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8090", "pulsed base URL")
	count := flag.Int("count", 20, "number of monitors to create")
	cleanup := flag.Bool("delete", false, "delete created monitors after waiting")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	log.Printf("creating %d monitors against %s\n", *count, *baseURL)
	var ids []string
	for i := 0; i < *count; i++ {
		status := 200
		if i%2 == 0 {
			status = 500
		}
		name := fmt.Sprintf("smoke-%d-%d", i, status)
		url := fmt.Sprintf("https://httpbin.org/status/%d", status)

		id, err := createMonitor(client, *baseURL, name, url)
		if err != nil {
			log.Printf("create monitor %d failed: %v", i, err)
			continue
		}
		ids = append(ids, id)
		fmt.Print(".")
	}
	fmt.Println()
	log.Printf("created %d monitors\n", len(ids))

	if *cleanup {
		log.Println("waiting 30s before cleanup")
		time.Sleep(30 * time.Second)
		for _, id := range ids {
			if err := deleteMonitor(client, *baseURL, id); err != nil {
				log.Printf("delete monitor %s failed: %v", id, err)
			}
		}
		log.Println("cleanup done")
	}
}

func createMonitor(client *http.Client, baseURL, name, url string) (string, error) {
	payload := map[string]any{
		"name":           name,
		"kind":           "https",
		"url":            url,
		"check_interval": 60,
		"timeout":        5,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	resp, err := client.Post(baseURL+"/api/monitors", "application/json", bytes.NewBuffer(data))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	var res map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", err
	}
	id, ok := res["id"].(string)
	if !ok {
		return "", fmt.Errorf("no id in response")
	}
	return id, nil
}

func deleteMonitor(client *http.Client, baseURL, id string) error {
	req, err := http.NewRequest(http.MethodDelete, baseURL+"/api/monitors/"+id, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
