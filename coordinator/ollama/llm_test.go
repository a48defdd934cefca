package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

// mockHTTPClient implements the HTTPClient interface for testing
type mockHTTPClient struct {
	response *http.Response
	err      error
	request  *http.Request
	body     []byte
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.request = req
	if req.Body != nil {
		m.body, _ = io.ReadAll(req.Body)
	}
	return m.response, m.err
}

// createMockResponse creates a mock HTTP response
func createMockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name         string
		opts         ClientOpts
		wantEndpoint string
		wantErr      bool
	}{
		{
			name: "valid client creation",
			opts: ClientOpts{
				BaseEndpoint: "http://localhost:11434",
				ModelID:      "llama3.2",
				HTTPClient:   &mockHTTPClient{},
			},
			wantEndpoint: "http://localhost:11434/api/chat",
		},
		{
			name: "trailing slash trimmed",
			opts: ClientOpts{
				BaseEndpoint: "http://ollama:11434/",
				ModelID:      "llama3.2",
			},
			wantEndpoint: "http://ollama:11434/api/chat",
		},
		{
			name:    "empty endpoint",
			opts:    ClientOpts{ModelID: "llama3.2"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewClient(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if got.endpoint != tt.wantEndpoint {
				t.Errorf("NewClient() endpoint = %v, want %v", got.endpoint, tt.wantEndpoint)
			}
			if got.httpClient == nil {
				t.Errorf("NewClient() httpClient is nil")
			}
			if got.options.Temperature != 0.2 || got.options.TopP != 0.9 {
				t.Errorf("NewClient() options = %+v, want default temperature and top_p", got.options)
			}
		})
	}
}

func TestClient_Generate(t *testing.T) {
	tests := []struct {
		name         string
		mockResponse *http.Response
		mockError    error
		want         string
		wantErr      bool
		errContains  string
	}{
		{
			name: "successful response with content",
			mockResponse: createMockResponse(200, `{
				"message": {
					"role": "assistant",
					"content": "[\"Pad Kra Pao - A & B & C\"]"
				}
			}`),
			want: `["Pad Kra Pao - A & B & C"]`,
		},
		{
			name:         "HTTP error",
			mockResponse: createMockResponse(500, `{"error": "Internal server error"}`),
			wantErr:      true,
			errContains:  "LLM_CLIENT:",
		},
		{
			name:         "error field in a 200 body",
			mockResponse: createMockResponse(200, `{"error": "model \"llama9\" not found"}`),
			wantErr:      true,
			errContains:  "not found",
		},
		{
			name:      "network error",
			mockError: io.EOF,
			wantErr:   true,
		},
		{
			name:         "malformed JSON response",
			mockResponse: createMockResponse(200, `{"message": {"content": "cut off"`),
			want:         `{"message": {"content": "cut off"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockHTTPClient{response: tt.mockResponse, err: tt.mockError}
			client, err := NewClient(ClientOpts{
				BaseEndpoint: "http://localhost:11434",
				ModelID:      "llama3.2",
				HTTPClient:   mock,
			})
			if err != nil {
				t.Fatalf("NewClient() unexpected error = %v", err)
			}

			got, err := client.Generate(context.Background(), "You are a local food guide.", "Recommend thai")

			if tt.wantErr {
				if err == nil {
					t.Errorf("Generate() expected error but got none")
					return
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Generate() error = %v, expected to contain %v", err, tt.errContains)
				}
				return
			}

			if err != nil {
				t.Errorf("Generate() unexpected error = %v", err)
				return
			}
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_Generate_Request(t *testing.T) {
	tests := []struct {
		name      string
		system    string
		wantRoles []string
	}{
		{name: "system and user", system: "rules", wantRoles: []string{"system", "user"}},
		{name: "blank system is dropped", system: "  ", wantRoles: []string{"user"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockHTTPClient{response: createMockResponse(200, `{"message":{"role":"assistant","content":"ok"}}`)}
			client, err := NewClient(ClientOpts{BaseEndpoint: "http://localhost:11434", ModelID: "llama3.2", HTTPClient: mock})
			if err != nil {
				t.Fatalf("NewClient() unexpected error = %v", err)
			}

			if _, err := client.Generate(context.Background(), tt.system, "hello"); err != nil {
				t.Fatalf("Generate() unexpected error = %v", err)
			}

			if mock.request.Method != http.MethodPost {
				t.Errorf("method = %v, want POST", mock.request.Method)
			}
			if ct := mock.request.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}

			var sent wireRequest
			if err := json.Unmarshal(mock.body, &sent); err != nil {
				t.Fatalf("request body is not JSON: %v", err)
			}
			if sent.Model != "llama3.2" || sent.Stream {
				t.Errorf("request = %+v, want model llama3.2 without streaming", sent)
			}
			if len(sent.Messages) != len(tt.wantRoles) {
				t.Fatalf("message count = %d, want %d", len(sent.Messages), len(tt.wantRoles))
			}
			for i, role := range tt.wantRoles {
				if sent.Messages[i].Role != role {
					t.Errorf("message %d role = %v, want %v", i, sent.Messages[i].Role, role)
				}
			}
			if last := sent.Messages[len(sent.Messages)-1]; last.Content != "hello" {
				t.Errorf("user content = %q", last.Content)
			}
		})
	}
}
