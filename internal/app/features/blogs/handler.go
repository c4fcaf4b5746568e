// internal/app/features/blogs/handler.go
package blogs

import (
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/dalemusser/redaid/internal/app/features/errors"
	blogstore "github.com/dalemusser/redaid/internal/app/store/blogs"
	"github.com/dalemusser/redaid/internal/app/system/auditlog"
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/formutil"
	"github.com/dalemusser/redaid/internal/app/system/htmlsanitize"
	"github.com/dalemusser/redaid/internal/app/system/inputval"
	"github.com/dalemusser/redaid/internal/app/system/limits"
	"github.com/dalemusser/redaid/internal/app/system/paging"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
	"github.com/dalemusser/redaid/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves blog posts.
type Handler struct {
	Blogs  *blogstore.Store
	ErrLog *apperrors.ErrorLogger
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

func NewHandler(blogs *blogstore.Store, errLog *apperrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Blogs:  blogs,
		ErrLog: errLog,
		Audit:  audit,
		Log:    logger,
	}
}

type listResponse struct {
	Blogs      []models.Blog `json:"blogs"`
	Total      int64         `json:"total"`
	TotalPages int64         `json:"totalPages"`
}

// ServeList handles GET /blogs?search&status&category&page&limit. Public.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := blogstore.ListFilter{
		Search:   query.Get(r, "search"),
		Status:   query.Get(r, "status"),
		Category: query.Get(r, "category"),
	}
	p := paging.Parse(r, paging.BlogLimit)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Blogs.List(ctx, f, p)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list blogs failed", err)
		return
	}
	respond.OK(w, listResponse{Blogs: res.Items, Total: res.Total, TotalPages: res.Pages})
}

// ServeGet handles GET /blogs/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "get blog: bad id", err, "Invalid blog id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Blogs.GetByID(ctx, id)
	if errors.Is(err, blogstore.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, "Blog not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "get blog failed", err)
		return
	}
	respond.OK(w, b)
}

type createInput struct {
	Title     string `json:"title" validate:"required,max=200"`
	Thumbnail string `json:"thumbnail" validate:"omitempty,httpurl,max=2048"`
	Content   string `json:"content" validate:"required"`
	Category  string `json:"category" validate:"max=80"`
	Status    string `json:"status" validate:"omitempty,oneof=draft published"`
}

// ServeCreate handles POST /blogs (admin or volunteer). Content is
// sanitized before it is stored; the author is the verified subject.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := formutil.DecodeJSON(w, r, &in, limits.MaxBlogBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "create blog: bad body", err, err.Error())
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Content = htmlsanitize.Sanitize(in.Content)
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "create blog: invalid input", res, res.First())
		return
	}

	sub, _ := auth.CurrentSubject(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Blogs.Create(ctx, models.Blog{
		Title:       in.Title,
		Thumbnail:   in.Thumbnail,
		Content:     in.Content,
		Category:    in.Category,
		Status:      in.Status,
		AuthorEmail: sub.Email,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create blog failed", err)
		return
	}
	h.Log.Info("blog created", zap.String("id", res.InsertedID), zap.String("author", sub.Email))
	respond.OK(w, res)
}

// ServeSetStatus handles PATCH /blogs/{id}/{status} (admin).
func (h *Handler) ServeSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "blog status: bad id", err, "Invalid blog id")
		return
	}
	status := chi.URLParam(r, "status")
	if !blogstore.ValidStatus(status) {
		respond.Message(w, http.StatusBadRequest, "status must be one of: draft, published.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Blogs.SetStatus(ctx, id, status)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "blog status failed", err)
		return
	}
	if res.ModifiedCount > 0 {
		h.Audit.BlogStatusChanged(ctx, r, id, status)
	}
	respond.OK(w, res)
}

// ServeDelete handles DELETE /blogs/{id} (admin).
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectID(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "delete blog: bad id", err, "Invalid blog id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Blogs.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete blog failed", err)
		return
	}
	if res.DeletedCount > 0 {
		h.Audit.BlogDeleted(ctx, r, id)
	}
	respond.OK(w, res)
}
