// Package track provides the Track descriptor domain entity.
package track

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Descriptor identifies the single bundled audio track handed to the playback engine.
// It is a value type; copies are never mutated after construction.
type Descriptor struct {
	ID      string `validate:"required"`     // Stable track identifier
	URL     string `validate:"required,uri"` // Local or remote URI of the audio asset
	Title   string `validate:"required"`     // Display title
	Artist  string // Display artist
	Artwork string `validate:"omitempty,uri"` // Artwork URI
}

var validate = validator.New()

// New builds a validated descriptor.
func New(id, url, title, artist, artwork string) (Descriptor, error) {
	d := Descriptor{
		ID:      id,
		URL:     url,
		Title:   title,
		Artist:  artist,
		Artwork: artwork,
	}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Validate checks that the descriptor can be handed to a playback engine.
func (d Descriptor) Validate() error {
	if err := validate.Struct(d); err != nil {
		return errors.Wrap(err, "invalid track descriptor")
	}
	return nil
}

// IsZero reports whether no track is described.
func (d Descriptor) IsZero() bool {
	return d == Descriptor{}
}

// String returns the title used in log lines and button labels.
func (d Descriptor) String() string {
	if d.Title != "" {
		return d.Title
	}
	return d.ID
}
