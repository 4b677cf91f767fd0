// internal/httpserver/routes_share.go
//
// Sharing helper, outside the game itself:
//   - GET /share        → {url, qr}
//   - GET /share/qr.png → QR code of APP_URL (?size= pixels)

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/logistics-puzzle/internal/share"
)

// mountShare registers all /share routes.
func (s *Server) mountShare(r chi.Router) {
	r.Route("/share", func(r chi.Router) {
		r.Get("/", s.handleShare)
		r.Get("/qr.png", s.handleShareQR)
	})
}

type shareRes struct {
	URL string `json:"url"`
	QR  string `json:"qr"`
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shareRes{URL: s.link.URL, QR: "/share/qr.png"})
}

func (s *Server) handleShareQR(w http.ResponseWriter, r *http.Request) {
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size == 0 {
		size = share.DefaultSize
	}
	img, err := s.link.PNG(size)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}
