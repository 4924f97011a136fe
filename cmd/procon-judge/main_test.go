package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/procon-tools/go-procon/cmd/procon-judge/config"
	"github.com/procon-tools/go-procon/language"
)

func TestCommandTemplates(t *testing.T) {
	langs := language.Default()
	cpp, _ := langs.Get("C++")

	tests := []struct {
		name    string
		conf    config.Config
		build   string
		run     string
		wantErr bool
	}{
		{"preset", config.Config{Source: "a.cpp", Language: "C++"}, cpp.Build, cpp.Run, false},
		{"run override", config.Config{Source: "a.cpp", Language: "c++", Run: "%D/a.out"}, cpp.Build, "%D/a.out", false},
		{"both override", config.Config{Source: "a.sh", Language: "Go", Build: "true", Run: "sh %S"}, "true", "sh %S", false},
		{"extension mismatch", config.Config{Source: "a.go", Language: "C++"}, "", "", true},
		{"unknown language", config.Config{Source: "a.rs", Language: "Rust"}, "", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			build, run, err := commandTemplates(&tc.conf, langs)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if build != tc.build || run != tc.run {
				t.Fatalf("got %q %q, want %q %q", build, run, tc.build, tc.run)
			}
		})
	}
}

func TestTokenAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(tokenAuth("secret"))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, tc := range []struct {
		header string
		code   int
	}{
		{"Bearer secret", http.StatusOK},
		{"Bearer wrong", http.StatusUnauthorized},
		{"secret", http.StatusUnauthorized},
		{"", http.StatusUnauthorized},
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		r.ServeHTTP(w, req)
		if w.Code != tc.code {
			t.Errorf("%q: expected %d, got %d", tc.header, tc.code, w.Code)
		}
	}
}
