package gce

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.Header.Get("Metadata-Flavor") != "Google" {
			t.Errorf("Expected Metadata-Flavor header to be Google")
		}
		if r.URL.Path == "/computeMetadata/v1/instance/id" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("1234567890123456789"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL+"/computeMetadata/v1/"), WithHTTPClient(server.Client()))

	id, err := client.Fetch(context.Background(), "/instance/id")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if id != "1234567890123456789" {
		t.Errorf("Expected instance id '1234567890123456789', got %s", id)
	}
}

func TestClient_FetchQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/instance/network-interfaces/" || r.URL.Query().Get("recursive") != "true" {
			t.Errorf("Unexpected request %s", r.URL)
		}
		w.Write([]byte(`[{"ip":"10.0.0.2"}]`))
	}))
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL))

	body, err := client.Fetch(context.Background(), "instance/network-interfaces/?recursive=true")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if body != `[{"ip":"10.0.0.2"}]` {
		t.Errorf("Unexpected body %s", body)
	}
}

func TestClient_FetchStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL))

	_, err := client.Fetch(context.Background(), "instance/attributes/user-data")
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("Expected ErrStatus, got %v", err)
	}
}

func TestClient_FetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(WithEndpoint(server.URL), WithTimeout(50*time.Millisecond))

	start := time.Now()
	if _, err := client.Fetch(context.Background(), "instance/id"); err == nil {
		t.Fatal("Expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Fetch took %s, expected the client timeout to apply", elapsed)
	}
}

func TestClient_Probe(t *testing.T) {
	rootCalled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/computeMetadata/v1/" {
			rootCalled = true
			if r.Header.Get("Metadata-Flavor") != "Google" {
				t.Errorf("Expected Metadata-Flavor header on probe")
			}
			w.Write([]byte("instance/\nproject/\n"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL + "/computeMetadata/v1"))

	if err := client.Probe(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !rootCalled {
		t.Error("Probe should have requested the endpoint root")
	}
}

func TestClient_ProbeUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(WithEndpoint(url))

	err := client.Probe(context.Background())
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("Expected ErrUnreachable, got %v", err)
	}
}

func TestClient_ProbeStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL))

	err := client.Probe(context.Background())
	if !errors.Is(err, ErrUnreachable) || !errors.Is(err, ErrStatus) {
		t.Fatalf("Expected ErrUnreachable wrapping ErrStatus, got %v", err)
	}
}

func TestClient_ProbeIgnoresRequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		w.Write([]byte("instance/\nproject/\n"))
	}))
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL), WithTimeout(50*time.Millisecond))

	if err := client.Probe(context.Background()); err != nil {
		t.Fatalf("Expected probe to use its own timeout, got %v", err)
	}

	if _, err := client.Fetch(context.Background(), "instance/id"); err == nil {
		t.Error("Expected fetch to hit the request timeout")
	}
}

func TestClient_TimeoutDoesNotModifyCallerClient(t *testing.T) {
	shared := &http.Client{}

	for _, options := range [][]func(*Client){
		{WithTimeout(2 * time.Second), WithHTTPClient(shared)},
		{WithHTTPClient(shared), WithTimeout(2 * time.Second)},
	} {
		client := NewClient(options...)

		if client.httpClient == shared {
			t.Error("Expected the caller's client to be copied")
		}
		if client.httpClient.Timeout != 2*time.Second {
			t.Errorf("Expected request timeout 2s, got %s", client.httpClient.Timeout)
		}
		if client.probeClient.Timeout != ProbeTimeout {
			t.Errorf("Expected probe timeout %s, got %s", ProbeTimeout, client.probeClient.Timeout)
		}
	}

	if shared.Timeout != 0 {
		t.Errorf("Caller's client was modified: timeout %s", shared.Timeout)
	}
	if http.DefaultClient.Timeout != 0 {
		t.Errorf("http.DefaultClient was modified: timeout %s", http.DefaultClient.Timeout)
	}
}
