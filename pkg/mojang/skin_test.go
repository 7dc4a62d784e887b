package mojang

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/data"
)

var pngData = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func TestClient_ChangeSkin(t *testing.T) {
	tests := []struct {
		name      string
		slim      bool
		wantModel string
	}{
		{name: "classic", slim: false, wantModel: ""},
		{name: "slim", slim: true, wantModel: "slim"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/user/profile/"+cydhraID+"/skin", r.URL.Path)
				assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

				if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
					assert.Equal(t, tt.wantModel, r.FormValue("model"))
					assert.Equal(t, "https://example.com/skin.png", r.FormValue("url"))
				}
				w.WriteHeader(http.StatusNoContent)
			})

			err := c.ChangeSkin(context.Background(), testSession, "https://example.com/skin.png", tt.slim)
			assert.NoError(t, err)
		})
	}
}

func TestClient_UploadSkin(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/user/profile/"+cydhraID+"/skin", r.URL.Path)

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "slim", r.FormValue("model"))

		file, header, err := r.FormFile("file")
		if assert.NoError(t, err) {
			defer func() { _ = file.Close() }()
			assert.Equal(t, "skin.png", header.Filename)
			got, _ := io.ReadAll(file)
			assert.Equal(t, pngData, got)
		}
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, c.UploadSkin(context.Background(), testSession, pngData, true))
}

func TestClient_UploadSkinValidation(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not a png", data: []byte("GIF89a............")},
		{name: "too large", data: append(append([]byte{}, pngData...), make([]byte, MaxSkinSize)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

			err := c.UploadSkin(context.Background(), testSession, tt.data, false)
			assert.ErrorIs(t, err, apierr.ErrInvalidArgument)
			assert.Zero(t, calls.Load())
		})
	}
}

func TestClient_ResetSkin(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/user/profile/"+cydhraID+"/skin", r.URL.Path)
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.ResetSkin(context.Background(), testSession))
}

func TestClient_SkinNotSecuredIsUnauthorized(t *testing.T) {
	ops := map[string]func(c *Client) error{
		"change": func(c *Client) error {
			return c.ChangeSkin(context.Background(), testSession, "https://example.com/skin.png", false)
		},
		"upload": func(c *Client) error {
			return c.UploadSkin(context.Background(), testSession, pngData, false)
		},
		"reset": func(c *Client) error {
			return c.ResetSkin(context.Background(), testSession)
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				respond(w, http.StatusForbidden, bodyNotSecured)
			})

			err := op(c)
			assert.ErrorIs(t, err, apierr.ErrUnauthorized)
			assert.NotErrorIs(t, err, apierr.ErrIPNotSecured)

			var apiErr *apierr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "Current IP is not secured", apiErr.Description)
		})
	}
}

func TestClient_SkinUnparsableForbiddenIsMalformed(t *testing.T) {
	ops := map[string]func(c *Client) error{
		"change": func(c *Client) error {
			return c.ChangeSkin(context.Background(), testSession, "https://example.com/skin.png", false)
		},
		"upload": func(c *Client) error {
			return c.UploadSkin(context.Background(), testSession, pngData, false)
		},
		"reset": func(c *Client) error {
			return c.ResetSkin(context.Background(), testSession)
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				respond(w, http.StatusForbidden, "<html>Forbidden</html>")
			})

			err := op(c)
			assert.ErrorIs(t, err, apierr.ErrMalformedResponse)
			assert.NotErrorIs(t, err, apierr.ErrUnauthorized)
		})
	}
}

func TestClient_SkinSessionValidation(t *testing.T) {
	tests := []struct {
		name    string
		session data.Session
		url     string
	}{
		{name: "no token", session: data.Session{ProfileID: cydhraID}, url: "https://example.com/a.png"},
		{name: "no profile", session: data.Session{AccessToken: testToken}, url: "https://example.com/a.png"},
		{name: "relative url", session: testSession, url: "skin.png"},
		{name: "ftp url", session: testSession, url: "ftp://example.com/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

			err := c.ChangeSkin(context.Background(), tt.session, tt.url, false)
			assert.ErrorIs(t, err, apierr.ErrInvalidArgument)
			assert.Zero(t, calls.Load())
		})
	}
}
