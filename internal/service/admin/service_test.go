package admin

import (
	"context"
	"testing"

	"github.com/olexh/busline/internal/domain"
	"github.com/olexh/busline/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBusAdminStore struct {
	nextID int64
	names  map[string]struct{}
}

func (s *fakeBusAdminStore) CreateBus(_ context.Context, b domain.Bus) (int64, error) {
	if s.names == nil {
		s.names = make(map[string]struct{})
	}
	if _, ok := s.names[b.Name]; ok {
		return 0, repository.ErrConflict
	}

	s.names[b.Name] = struct{}{}
	s.nextID++

	return s.nextID, nil
}

func validBus() domain.Bus {
	return domain.Bus{
		Name:        "Express 7",
		Source:      "Kyiv",
		Destination: "Lviv",
		FareCents:   45000,
		TotalSeats:  40,
	}
}

func TestCreateBus(t *testing.T) {
	svc := New(&fakeBusAdminStore{}, nil, nil)

	id, err := svc.CreateBus(context.Background(), validBus())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestCreateBus_DuplicateName(t *testing.T) {
	svc := New(&fakeBusAdminStore{}, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateBus(ctx, validBus())
	require.NoError(t, err)

	_, err = svc.CreateBus(ctx, validBus())
	assert.ErrorIs(t, err, ErrBusConflict)
}

func TestCreateBus_Validation(t *testing.T) {
	svc := New(&fakeBusAdminStore{}, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(b *domain.Bus)
	}{
		{"empty name", func(b *domain.Bus) { b.Name = "" }},
		{"empty source", func(b *domain.Bus) { b.Source = "" }},
		{"empty destination", func(b *domain.Bus) { b.Destination = "" }},
		{"zero seats", func(b *domain.Bus) { b.TotalSeats = 0 }},
		{"negative fare", func(b *domain.Bus) { b.FareCents = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBus()
			tt.mutate(&b)

			_, err := svc.CreateBus(ctx, b)
			assert.ErrorIs(t, err, ErrInvalidBus)
		})
	}
}
