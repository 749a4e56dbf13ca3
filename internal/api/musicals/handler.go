package musicals

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"musical-catalog/internal/api/respond"
	"musical-catalog/internal/app/http/middleware"
	"musical-catalog/internal/catalog"
	"musical-catalog/internal/domain/musicals"
	"musical-catalog/internal/domain/users"
	"musical-catalog/internal/logging"

	"github.com/gin-gonic/gin"
)

// Catalog is the catalog service as seen by the HTTP layer.
type Catalog interface {
	List(ctx context.Context, req catalog.ListRequest, id *users.Identity) (catalog.Page, error)
	Get(ctx context.Context, musicalID string, id *users.Identity) (*musicals.Musical, error)
	Create(ctx context.Context, in musicals.Input, id *users.Identity) (*musicals.Musical, error)
	Update(ctx context.Context, musicalID string, patch musicals.Patch, id *users.Identity) (*musicals.Musical, error)
	Delete(ctx context.Context, musicalID string, id *users.Identity) (*musicals.Musical, error)
}

// PosterUploader stores a poster image and returns its public URL.
type PosterUploader interface {
	Upload(ctx context.Context, filename string, body io.Reader, size int64) (string, error)
}

type Handler struct {
	catalog Catalog
	posters PosterUploader
	log     logging.Logger
}

func NewHandler(c Catalog, posters PosterUploader, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{catalog: c, posters: posters, log: log}
}

// GET /musicals
func (h *Handler) List(c *gin.Context) {
	req, fields := parseListRequest(c)
	if len(fields) > 0 {
		respond.BadRequest(c, "invalid list request", fields)
		return
	}

	page, err := h.catalog.List(c.Request.Context(), req, middleware.IdentityFrom(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /musicals/:id
func (h *Handler) Get(c *gin.Context) {
	m, err := h.catalog.Get(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// POST /musicals
func (h *Handler) Create(c *gin.Context) {
	var in musicals.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "Invalid request body", nil)
		return
	}

	m, err := h.catalog.Create(c.Request.Context(), in, middleware.IdentityFrom(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// PUT|PATCH /musicals/:id
func (h *Handler) Update(c *gin.Context) {
	var patch musicals.Patch
	if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
		respond.BadRequest(c, "Invalid request body", nil)
		return
	}

	m, err := h.catalog.Update(c.Request.Context(), c.Param("id"), patch, middleware.IdentityFrom(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DELETE /musicals/:id
func (h *Handler) Delete(c *gin.Context) {
	m, err := h.catalog.Delete(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// POST /musicals/posters (multipart field "file")
func (h *Handler) UploadPoster(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		respond.BadRequest(c, "invalid poster", map[string]string{"file": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	defer f.Close()

	url, err := h.posters.Upload(c.Request.Context(), fh.Filename, f, fh.Size)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}

	h.log.Info(c.Request.Context(), "poster uploaded", "user_id", middleware.IdentityFrom(c).ID, "url", url)
	c.JSON(http.StatusCreated, gin.H{"posterUrl": url})
}

func parseListRequest(c *gin.Context) (catalog.ListRequest, map[string]string) {
	var (
		req    catalog.ListRequest
		fields = map[string]string{}
	)

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields["limit"] = "must be an integer"
		}
		req.Limit = n
	}
	if v := c.Query("include_unreleased"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fields["include_unreleased"] = "must be true or false"
		}
		req.IncludeUnreleased = b
	}
	req.Cursor = c.Query("cursor")
	req.SearchText = c.Query("q")

	if v := c.Query("release_date_from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			fields["release_date_from"] = "must be a date (YYYY-MM-DD or RFC 3339)"
		}
		req.ReleaseDateFrom = t
	}
	if v := c.Query("release_date_to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			fields["release_date_to"] = "must be a date (YYYY-MM-DD or RFC 3339)"
		}
		req.ReleaseDateTo = t
	}
	return req, fields
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PostersEnabled reports whether poster uploads can be served.
func (h *Handler) PostersEnabled() bool {
	return h.posters != nil
}
