package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/cardsmith/internal/models"
)

func TestParseNames(t *testing.T) {
	tests := []struct {
		reply string
		want  []string
	}{
		{"张三, 李四，王五", []string{"张三", "李四", "王五"}},
		{"张三,张三, 李四", []string{"张三", "李四"}},
		{"无", []string{}},
		{" , ，", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		got := ParseNames(tt.reply)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || got == nil {
			t.Errorf("ParseNames(%q) = %v, want %v", tt.reply, got, tt.want)
		}
	}
}

func TestNew_NoKeyIsNoop(t *testing.T) {
	ex := New(Options{}, nil)
	if _, ok := ex.(Noop); !ok {
		t.Fatalf("extractor = %T, want Noop", ex)
	}
	if got := ex.Names(context.Background(), models.CoverState{BodyText: "<div>张三</div>"}); len(got) != 0 {
		t.Errorf("names = %v", got)
	}
}

func TestClient_Names(t *testing.T) {
	var gotPrompt, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) > 0 {
			gotPrompt = req.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"张三，李四, 张三"}}]}`))
	}))
	defer srv.Close()

	ex := New(Options{BaseURL: srv.URL + "/v1/", APIKey: "k"}, nil)
	st := models.CoverState{BodyText: "<div>张三见到<b>李四</b></div>"}
	got := ex.Names(context.Background(), st)
	if strings.Join(got, ",") != "张三,李四" {
		t.Errorf("names = %v", got)
	}
	if gotAuth != "Bearer k" {
		t.Errorf("auth = %q", gotAuth)
	}
	if !strings.Contains(gotPrompt, "张三见到李四") || strings.Contains(gotPrompt, "<b>") {
		t.Errorf("prompt = %q", gotPrompt)
	}
}

func TestClient_UpstreamErrorIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ex := New(Options{BaseURL: srv.URL, APIKey: "k"}, nil)
	got := ex.Names(context.Background(), models.CoverState{BodyText: "<div>text</div>"})
	if got == nil || len(got) != 0 {
		t.Errorf("names = %v, want empty", got)
	}
}

func TestClient_EmptyTextSkipsCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	ex := New(Options{BaseURL: srv.URL, APIKey: "k"}, nil)
	if got := ex.Names(context.Background(), models.CoverState{}); len(got) != 0 {
		t.Errorf("names = %v", got)
	}
	if called {
		t.Error("service called for empty text")
	}
}
