package usecases_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
	"github.com/mathieuadams/ukcrimerepository/internal/core/usecases"
)

func TestValidateCoordinate_InRange(t *testing.T) {
	for _, lat := range []float64{-90, -45.5, 0, 51.5074, 90} {
		for _, lng := range []float64{-180, -0.1278, 0, 120.25, 180} {
			c, err := usecases.ValidateCoordinate(fmt.Sprint(lat), fmt.Sprint(lng))
			require.NoError(t, err, "lat=%v lng=%v", lat, lng)
			assert.Equal(t, domain.Coordinate{Lat: lat, Lng: lng}, c)
		}
	}
}

func TestValidateCoordinate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng string
		want     error
	}{
		{"latitude too high", "91", "0", domain.ErrLatitudeOutOfRange},
		{"latitude too low", "-90.0001", "0", domain.ErrLatitudeOutOfRange},
		{"longitude too high", "0", "181", domain.ErrLongitudeOutOfRange},
		{"longitude too low", "0", "-180.5", domain.ErrLongitudeOutOfRange},
		{"latitude not a number", "abc", "0", domain.ErrInvalidFormat},
		{"longitude empty", "51", "", domain.ErrInvalidFormat},
		{"infinite", "Inf", "0", domain.ErrInvalidFormat},
		{"nan", "0", "NaN", domain.ErrInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := usecases.ValidateCoordinate(tt.lat, tt.lng)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var ve *domain.ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestValidateCoordinate_TrimsWhitespace(t *testing.T) {
	c, err := usecases.ValidateCoordinate(" 51.5 ", "\t-0.12")
	require.NoError(t, err)
	assert.Equal(t, 51.5, c.Lat)
	assert.Equal(t, -0.12, c.Lng)
}
