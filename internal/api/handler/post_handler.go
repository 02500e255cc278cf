package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"marketplace/internal/api/middleware"
	"marketplace/internal/app/service"
	"marketplace/internal/common"
	"marketplace/internal/platform/config"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(ps *service.PostService) *PostHandler {
	return &PostHandler{postService: ps}
}

func (h *PostHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listPosts)       // GET /posts
	r.Get("/{postID}", h.getPost) // GET /posts/{id}

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/create", h.createPost)     // POST /posts/create (multipart)
		adminRouter.Put("/{postID}", h.updatePost)    // PUT /posts/{id}
		adminRouter.Delete("/{postID}", h.deletePost) // DELETE /posts/{id}
	})
}

func (h *PostHandler) createPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	req := service.CreatePostRequest{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
	}
	if priceStr := r.FormValue("price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid price")
			return
		}
		req.Price = price
	}

	imagePath, err := h.saveUploadedImage(r)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	req.Image = imagePath

	if _, err := h.postService.CreatePost(r.Context(), userID, req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]string{"msg": "Post created"})
}

// saveUploadedImage stores the optional image field under the public uploads
// dir with a randomized filename and returns its public path, or nil when no
// file was attached.
func (h *PostHandler) saveUploadedImage(r *http.Request) (*string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, common.Errorf("invalid image upload: %w", common.ErrBadRequest)
	}
	defer file.Close()

	uploadDir := config.AppConfig.UploadDir
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, common.Errorf("failed to prepare upload directory: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(uploadDir, name))
	if err != nil {
		return nil, common.Errorf("failed to store upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return nil, common.Errorf("failed to store upload: %w", err)
	}

	log.Printf("Stored upload %s (%d bytes)", name, header.Size)
	publicPath := "/uploads/" + name
	return &publicPath, nil
}

func (h *PostHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	var req service.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if _, err := h.postService.UpdatePost(r.Context(), postID, req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"msg": "Post updated"})
}

func (h *PostHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	if err := h.postService.DeletePost(r.Context(), postID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"msg": "Post deleted"})
}

func (h *PostHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListPosts(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) getPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	post, err := h.postService.GetPost(r.Context(), postID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}
