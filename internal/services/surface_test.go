package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/fishstation/internal/shared"
)

func TestBrowserSurface(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/outer/free":
			http.Redirect(w, r, "/cdn/free.mp3", http.StatusFound)
		case "/cdn/free.mp3":
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("ID3"))
		case "/outer/vip":
			http.Redirect(w, r, "/404", http.StatusFound)
		case "/404":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html>need vip</html>"))
		case "/outer/gone":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	newSurface := func(opened *[]string, openErr error) *BrowserSurface {
		open := func(url string) error {
			*opened = append(*opened, url)
			return openErr
		}
		return NewBrowserSurface(NewStationClient(server.Client(), 0, 0), server.URL+"/", open, shared.NewLogger(nil))
	}

	t.Run("playable track opens", func(t *testing.T) {
		var opened []string
		ok, err := newSurface(&opened, nil).Play(context.Background(), server.URL+"/outer/free")
		if err != nil || !ok {
			t.Fatalf("Play() = %v, %v; want true, nil", ok, err)
		}
		if len(opened) != 1 || opened[0] != server.URL+"/outer/free" {
			t.Errorf("expected playable url opened, got %v", opened)
		}
	})

	t.Run("vip track refused", func(t *testing.T) {
		var opened []string
		ok, err := newSurface(&opened, nil).Play(context.Background(), server.URL+"/outer/vip")
		if err != nil || ok {
			t.Fatalf("Play() = %v, %v; want false, nil", ok, err)
		}
		if len(opened) != 0 {
			t.Errorf("refused track should not open, got %v", opened)
		}
	})

	t.Run("missing track refused", func(t *testing.T) {
		var opened []string
		ok, err := newSurface(&opened, nil).Play(context.Background(), server.URL+"/outer/gone")
		if err != nil || ok {
			t.Fatalf("Play() = %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("server error is a source error", func(t *testing.T) {
		var opened []string
		_, err := newSurface(&opened, nil).Play(context.Background(), server.URL+"/broken")
		if !errors.Is(err, shared.ErrSource) {
			t.Errorf("expected source error, got %v", err)
		}
	})

	t.Run("open failure is a source error", func(t *testing.T) {
		var opened []string
		ok, err := newSurface(&opened, errors.New("no display")).Play(context.Background(), server.URL+"/outer/free")
		if ok || !errors.Is(err, shared.ErrSource) {
			t.Errorf("Play() = %v, %v; want false, source error", ok, err)
		}
	})

	t.Run("GoHome opens home page", func(t *testing.T) {
		var opened []string
		if err := newSurface(&opened, nil).GoHome(context.Background()); err != nil {
			t.Fatalf("GoHome() error = %v", err)
		}
		if len(opened) != 1 || opened[0] != server.URL+"/" {
			t.Errorf("expected home page opened, got %v", opened)
		}
	})

	t.Run("nil opener only probes", func(t *testing.T) {
		surface := NewBrowserSurface(NewStationClient(server.Client(), 0, 0), "", nil, shared.NewLogger(nil))
		ok, err := surface.Play(context.Background(), server.URL+"/outer/free")
		if err != nil || !ok {
			t.Errorf("Play() = %v, %v; want true, nil", ok, err)
		}
		if err := surface.GoHome(context.Background()); err != nil {
			t.Errorf("GoHome() error = %v", err)
		}
	})
}
