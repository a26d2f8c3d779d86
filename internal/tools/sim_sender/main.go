package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

type simulateResponse struct {
	OriginalData []string `json:"originalData"`
	Decoded      [][]int  `json:"decoded"`
	Error        string   `json:"error"`
}

func randomBits(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('0' + rand.Intn(2)))
	}
	return sb.String()
}

func joinBits(bits []int) string {
	var sb strings.Builder
	for _, b := range bits {
		fmt.Fprint(&sb, b)
	}
	return sb.String()
}

// send posts one random request and reports whether every station decoded intact
func send(client *http.Client, url string, stations, bits int) (bool, error) {
	data := make([]string, stations)
	for i := range data {
		data[i] = randomBits(bits)
	}

	body, err := json.Marshal(map[string][]string{"stations": data})
	if err != nil {
		return false, err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	var out simulateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return false, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("status %d: %s", resp.StatusCode, out.Error)
	}

	for i, want := range data {
		if i >= len(out.Decoded) || joinBits(out.Decoded[i]) != want {
			log.Printf("station %d mismatch: sent %s", i+1, want)
			return false, nil
		}
	}
	return true, nil
}

func main() {
	url := flag.String("url", "http://localhost:3000/api/simulate", "simulate endpoint")
	stations := flag.Int("stations", 4, "stations per request")
	bits := flag.Int("bits", 8, "bits per station")
	count := flag.Int("count", 20, "number of requests")
	interval := flag.Duration("interval", 100*time.Millisecond, "interval between requests")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	log.Printf("sending %d requests to %s (%d stations x %d bits)", *count, *url, *stations, *bits)

	var ok, mismatched, failed int
	for i := 0; i < *count; i++ {
		match, err := send(client, *url, *stations, *bits)
		switch {
		case err != nil:
			failed++
			log.Printf("request %d failed: %v", i+1, err)
		case match:
			ok++
		default:
			mismatched++
		}
		time.Sleep(*interval)
	}

	log.Printf("done: %d ok, %d mismatched, %d failed", ok, mismatched, failed)
}
