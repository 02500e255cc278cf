package service

import (
	"context"
	"marketplace/internal/common"
	"marketplace/internal/domain/model"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreatePost_Validation(t *testing.T) {
	svc := NewPostService(newFakePostRepo())

	tests := []struct {
		name string
		req  CreatePostRequest
	}{
		{name: "missing title", req: CreatePostRequest{Content: "body", Price: 1}},
		{name: "missing content", req: CreatePostRequest{Title: "Mug", Price: 1}},
		{name: "negative price", req: CreatePostRequest{Title: "Mug", Content: "body", Price: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(context.Background(), "admin-1", tt.req)
			require.Error(t, err)
			require.Equal(t, http.StatusBadRequest, common.HTTPStatusFromError(err))
		})
	}
}

func TestCreatePost_SetsSlugAndCreator(t *testing.T) {
	repo := newFakePostRepo()
	svc := NewPostService(repo)

	post, err := svc.CreatePost(context.Background(), "admin-1", CreatePostRequest{
		Title:   "Handmade Coffee Mug",
		Content: "A nice mug",
		Price:   12.5,
	})
	require.NoError(t, err)
	require.Equal(t, "handmade-coffee-mug", post.Slug)
	require.Equal(t, "admin-1", post.CreatedByID)
	require.NotEmpty(t, post.ID)

	stored, err := repo.FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	require.Equal(t, post.Title, stored.Title)
}

func TestUpdatePost_PartialUpdate(t *testing.T) {
	repo := newFakePostRepo()
	svc := NewPostService(repo)

	created, err := svc.CreatePost(context.Background(), "admin-1", CreatePostRequest{
		Title:   "Old Title",
		Content: "body",
		Price:   5,
	})
	require.NoError(t, err)

	newTitle := "New Title"
	newPrice := 9.99
	updated, err := svc.UpdatePost(context.Background(), created.ID, UpdatePostRequest{
		Title: &newTitle,
		Price: &newPrice,
	})
	require.NoError(t, err)
	require.Equal(t, "New Title", updated.Title)
	require.Equal(t, "new-title", updated.Slug)
	require.Equal(t, 9.99, updated.Price)
	require.Equal(t, "body", updated.Content) // untouched
}

func TestUpdatePost_NotFound(t *testing.T) {
	svc := NewPostService(newFakePostRepo())

	title := "x"
	_, err := svc.UpdatePost(context.Background(), "missing", UpdatePostRequest{Title: &title})
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, common.HTTPStatusFromError(err))
}

func TestDeletePost_NotFound(t *testing.T) {
	svc := NewPostService(newFakePostRepo())

	err := svc.DeletePost(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, common.HTTPStatusFromError(err))
}

func TestListPosts_NewestFirst(t *testing.T) {
	repo := newFakePostRepo()
	svc := NewPostService(repo)

	base := time.Now()
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.Create(context.Background(), &model.Post{
			ID:        id,
			Title:     id,
			Content:   "body",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	posts, err := svc.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)
	require.Equal(t, "new", posts[0].ID)
	require.Equal(t, "mid", posts[1].ID)
	require.Equal(t, "old", posts[2].ID)
}

func TestDeletePost_KeepsHistoricalPayments(t *testing.T) {
	posts := newFakePostRepo()
	payments := newFakePaymentRepo()
	notes := newFakeNotificationRepo()
	postSvc := NewPostService(posts)
	paySvc := NewPaymentService(payments, notes, posts, nil, nil, newNopDB())

	created, err := postSvc.CreatePost(context.Background(), "admin-1", CreatePostRequest{
		Title:   "Short Lived",
		Content: "body",
		Price:   10,
	})
	require.NoError(t, err)

	_, err = paySvc.RecordDirect(context.Background(), created.ID, DirectPaymentRequest{
		Quantity:  1,
		BuyerInfo: BuyerInfo{BuyerID: "buyer-1"},
	})
	require.NoError(t, err)

	require.NoError(t, postSvc.DeletePost(context.Background(), created.ID))

	ledger, err := payments.ListByPost(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 1) // no cascade
}
