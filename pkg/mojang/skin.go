package mojang

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/docker/go-units"

	"github.com/steviee/nidhogg/internal/transport"
	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/data"
)

// MaxSkinSize is the largest skin image UploadSkin accepts.
const MaxSkinSize = units.MiB

// ChangeSkin sets the skin of the session's profile to the image at
// sourceURL.
func (c *Client) ChangeSkin(ctx context.Context, session data.Session, sourceURL string, slim bool) error {
	if err := validateSkinSession(session); err != nil {
		return err
	}
	parsed, err := url.ParseRequestURI(sourceURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return apierr.InvalidArgument("invalid skin url %q", sourceURL)
	}

	body, contentType, err := transport.MultipartBody([]transport.MultipartField{
		{Name: "model", Value: skinModel(slim)},
		{Name: "url", Value: sourceURL},
	}, nil)
	if err != nil {
		return err
	}

	return c.skinRequest(ctx, "change skin", session, http.MethodPost, body, contentType)
}

// UploadSkin uploads a PNG skin image for the session's profile.
func (c *Client) UploadSkin(ctx context.Context, session data.Session, png []byte, slim bool) error {
	if err := validateSkinSession(session); err != nil {
		return err
	}
	switch {
	case len(png) == 0:
		return apierr.InvalidArgument("skin image is empty")
	case len(png) > MaxSkinSize:
		return apierr.InvalidArgument("skin image is %s, the limit is %s",
			units.HumanSize(float64(len(png))), units.HumanSize(float64(MaxSkinSize)))
	case http.DetectContentType(png) != "image/png":
		return apierr.InvalidArgument("skin image is not a PNG")
	}

	body, contentType, err := transport.MultipartBody(
		[]transport.MultipartField{{Name: "model", Value: skinModel(slim)}},
		&transport.FilePart{Field: "file", FileName: "skin.png", Data: png},
	)
	if err != nil {
		return err
	}

	return c.skinRequest(ctx, "upload skin", session, http.MethodPut, body, contentType)
}

// ResetSkin restores the default skin of the session's profile.
func (c *Client) ResetSkin(ctx context.Context, session data.Session) error {
	if err := validateSkinSession(session); err != nil {
		return err
	}
	return c.skinRequest(ctx, "reset skin", session, http.MethodDelete, nil, "")
}

func (c *Client) skinRequest(ctx context.Context, op string, session data.Session, method string, body io.Reader, contentType string) error {
	req := transport.Request{
		Method:      method,
		BaseURL:     c.apiBaseURL,
		Path:        endpointSkin.Expand(data.TrimUUID(session.ProfileID)),
		Body:        body,
		ContentType: contentType,
		BearerToken: session.AccessToken,
	}

	_, err := c.call(ctx, req, nil)
	if errors.Is(err, apierr.ErrForbidden) {
		return fmt.Errorf("%s: %w", op, apierr.Reclassify(err, apierr.ErrUnauthorized))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func validateSkinSession(session data.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	if session.ProfileID == "" {
		return apierr.InvalidArgument("session has no profile id")
	}
	return nil
}

func skinModel(slim bool) string {
	if slim {
		return "slim"
	}
	return ""
}
