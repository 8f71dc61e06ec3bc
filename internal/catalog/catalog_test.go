package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/materialhub/materialhub-cli/internal/models"
)

type countingSource struct {
	cats, maps atomic.Int32
	mapsErr    error
}

func (s *countingSource) Categories(context.Context) ([]models.Category, error) {
	s.cats.Add(1)
	return []models.Category{{Value: "smoke", Label: "Smoke"}}, nil
}

func (s *countingSource) Maps(context.Context) ([]string, error) {
	s.maps.Add(1)
	if s.mapsErr != nil {
		return nil, s.mapsErr
	}
	return []string{"de_mirage"}, nil
}

func TestLoader_CachesBothCatalogs(t *testing.T) {
	src := &countingSource{}
	l := NewLoader(src, time.Minute)
	defer l.Close()

	for i := 0; i < 3; i++ {
		c, err := l.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Smoke", c.Label("smoke"))
		assert.Equal(t, []string{"de_mirage"}, c.Maps)
	}
	assert.Equal(t, int32(1), src.cats.Load())
	assert.Equal(t, int32(1), src.maps.Load())

	l.Invalidate()
	_, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.cats.Load())
}

func TestLoader_PropagatesError(t *testing.T) {
	boom := errors.New("maps down")
	l := NewLoader(&countingSource{mapsErr: boom}, time.Minute)
	defer l.Close()

	_, err := l.Load(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCatalog_LabelFallsBackToValue(t *testing.T) {
	c := &Catalog{}
	assert.Equal(t, "unknown", c.Label("unknown"))
}
