package data

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// TexturesProperty is the name of the profile property carrying textures.
const TexturesProperty = "textures"

// ErrPropertyNotFound is returned when a profile has no textures property.
var ErrPropertyNotFound = errors.New("property not found")

// SkinProfile is a profile as returned by the session server.
type SkinProfile struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Properties []ProfileProperty `json:"properties"`
	Legacy     bool              `json:"legacy,omitempty"`
}

// Property returns the property with the given name.
func (p *SkinProfile) Property(name string) (ProfileProperty, bool) {
	for _, prop := range p.Properties {
		if prop.Name == name {
			return prop, true
		}
	}
	return ProfileProperty{}, false
}

// DecodeTextures decodes the base64 JSON textures property.
func (p *SkinProfile) DecodeTextures() (*TexturePropertyData, error) {
	prop, ok := p.Property(TexturesProperty)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, TexturesProperty)
	}

	raw, err := base64.StdEncoding.DecodeString(prop.Value)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(prop.Value)
		if err != nil {
			return nil, fmt.Errorf("decode textures base64: %w", err)
		}
	}

	var textures TexturePropertyData
	if err := json.Unmarshal(raw, &textures); err != nil {
		return nil, fmt.Errorf("decode textures json: %w", err)
	}
	return &textures, nil
}

// ProfileWithTextures is a SkinProfile whose textures are decoded on first
// access.
type ProfileWithTextures struct {
	SkinProfile
	Textures *Lazy[*TexturePropertyData] `json:"-"`
}

// NewProfileWithTextures wraps p.
func NewProfileWithTextures(p SkinProfile) *ProfileWithTextures {
	pt := &ProfileWithTextures{SkinProfile: p}
	pt.Textures = NewLazy(pt.SkinProfile.DecodeTextures)
	return pt
}

// TexturePropertyData is the decoded textures property.
type TexturePropertyData struct {
	Timestamp         int64    `json:"timestamp"`
	ProfileID         string   `json:"profileId"`
	ProfileName       string   `json:"profileName"`
	SignatureRequired *bool    `json:"signatureRequired,omitempty"`
	Textures          Textures `json:"textures"`
}

// Textures holds the skin and cape of a profile.
type Textures struct {
	Skin *Texture `json:"SKIN,omitempty"`
	Cape *Texture `json:"CAPE,omitempty"`
}

// Texture is a texture URL with optional model metadata.
type Texture struct {
	URL      string         `json:"url"`
	Metadata *ModelMetadata `json:"metadata,omitempty"`
}

// ModelMetadata describes the player model a skin is drawn on.
type ModelMetadata struct {
	Model string `json:"model"`
}

// Slim reports whether the texture uses the slim ("alex") model.
func (t *Texture) Slim() bool {
	return t != nil && t.Metadata != nil && t.Metadata.Model == "slim"
}
