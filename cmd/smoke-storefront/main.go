package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"
)

// End-to-end smoke check against a running API: register, fetch the profile,
// log out, and confirm the session is dead afterwards.
func main() {
	base := os.Getenv("SUPERNOVA_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	suffix := rand.New(rand.NewSource(time.Now().UnixNano())).Int63()
	body, _ := json.Marshal(map[string]any{
		"username": fmt.Sprintf("smoke%d", suffix),
		"email":    fmt.Sprintf("smoke%d@example.com", suffix),
		"password": "smoke-pass-1",
		"fullName": map[string]string{"firstName": "Smoke", "lastName": "Test"},
	})

	resp, err := client.Post(base+"/register", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("register: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		log.Fatalf("register: unexpected status %d", resp.StatusCode)
	}

	resp, err = client.Get(base + "/me")
	if err != nil {
		log.Fatalf("me: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("me after register: unexpected status %d", resp.StatusCode)
	}

	resp, err = client.Get(base + "/logout")
	if err != nil {
		log.Fatalf("logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("logout: unexpected status %d", resp.StatusCode)
	}

	resp, err = client.Get(base + "/me")
	if err != nil {
		log.Fatalf("me after logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		log.Fatalf("me after logout: expected 401, got %d", resp.StatusCode)
	}

	fmt.Println("✅ storefront smoke test passed")
}
