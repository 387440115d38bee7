package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/homelabdash/homelabdash/internal/api/response"
)

// ResourceFile is the services document's name inside the config directory.
const ResourceFile = "services.json"

// ResourceHandler serves the services document from disk. The file is read
// on every request so edits show up on the next load.
type ResourceHandler struct {
	path   string
	logger zerolog.Logger
}

// NewResourceHandler serves dir/services.json.
func NewResourceHandler(dir string, logger zerolog.Logger) *ResourceHandler {
	return &ResourceHandler{
		path:   filepath.Join(dir, ResourceFile),
		logger: logger,
	}
}

// ServicesDocument handles GET /config/services.json.
func (h *ResourceHandler) ServicesDocument(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			response.NotFound(w, r, ResourceFile+" does not exist")
			return
		}
		h.logger.Error().Err(err).Str("path", h.path).Msg("failed to open services document")
		response.InternalError(w, r, "could not read "+ResourceFile)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		response.NotFound(w, r, ResourceFile+" is not a file")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	http.ServeContent(w, r, ResourceFile, info.ModTime(), f)
}
