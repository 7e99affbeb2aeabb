package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	url string
	err error
}

func (f *fakeUploader) Upload(_ context.Context, _ string) (string, error) {
	return f.url, f.err
}

func uploadEnv(uploader ImageUploader) *testEnv {
	env := newTestEnv()
	handler := NewUploadHandler(uploader)
	env.router.POST("/api/upload", handler.Upload)
	return env
}

func TestUpload(t *testing.T) {
	dataURL := "data:image/png;base64,iVBORw0KGgo="

	t.Run("returns the relay URL", func(t *testing.T) {
		env := uploadEnv(&fakeUploader{url: "https://res.cloudinary.com/demo/twitter-clone/abc.png"})

		w := env.do(t, "POST", "/api/upload", "", map[string]string{"image": dataURL})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			URL string `json:"url"`
		}
		decodeJSON(t, w, &resp)
		assert.Equal(t, "https://res.cloudinary.com/demo/twitter-clone/abc.png", resp.URL)
	})

	t.Run("relay failure is a 500", func(t *testing.T) {
		env := uploadEnv(&fakeUploader{err: errors.New("cloudinary down")})

		w := env.do(t, "POST", "/api/upload", "", map[string]string{"image": dataURL})
		require.Equal(t, http.StatusInternalServerError, w.Code)

		var resp gin.H
		decodeJSON(t, w, &resp)
		assert.Equal(t, "Upload failed", resp["error"])
	})

	t.Run("missing image is a 400", func(t *testing.T) {
		env := uploadEnv(&fakeUploader{url: "unused"})

		w := env.do(t, "POST", "/api/upload", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unconfigured uploader is a 503", func(t *testing.T) {
		env := uploadEnv(nil)

		w := env.do(t, "POST", "/api/upload", "", map[string]string{"image": dataURL})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
