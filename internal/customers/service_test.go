package customers

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	byID   map[int64]*Customer
	nextID int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{byID: make(map[int64]*Customer), nextID: 1}
}

func (m *memoryRepository) Create(_ context.Context, c *Customer) error {
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Now()
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memoryRepository) Get(_ context.Context, id int64) (*Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memoryRepository) List(_ context.Context, search string, _, _ int) ([]Customer, int, error) {
	var items []Customer
	for _, c := range m.byID {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			continue
		}
		items = append(items, *c)
	}
	return items, len(items), nil
}

func (m *memoryRepository) Update(_ context.Context, c *Customer) error {
	if _, ok := m.byID[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryRepository) FindByIdentification(_ context.Context, identification string) (*Customer, error) {
	normalized := strings.ToUpper(strings.TrimSpace(identification))
	for _, c := range m.byID {
		if c.Identification != nil && *c.Identification == normalized {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepository) FindByName(_ context.Context, name string) (*Customer, error) {
	for _, c := range m.byID {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func strPtr(s string) *string { return &s }

func TestClassifyIdentification(t *testing.T) {
	require.Equal(t, KindRIF, ClassifyIdentification("J-12345678-9"))
	require.Equal(t, KindRIF, ClassifyIdentification("g200001234"))
	require.Equal(t, KindRIF, ClassifyIdentification(" E81234567 "))
	require.Equal(t, KindRIF, ClassifyIdentification("P123456"))
	require.Equal(t, KindCedula, ClassifyIdentification("V-12345678"))
	require.Equal(t, KindCedula, ClassifyIdentification("12345678"))
}

func TestFindOrCreateMatchesByIdentification(t *testing.T) {
	svc := NewService(newMemoryRepository(), slog.Default())
	ctx := context.Background()

	first, err := svc.Create(ctx, UpsertRequest{Name: "María Pérez", Identification: strPtr("v-9555111")})
	require.NoError(t, err)
	require.Equal(t, "V-9555111", *first.Identification)

	again, err := svc.FindOrCreate(ctx, UpsertRequest{Name: "Maria P.", Identification: strPtr("V-9555111")})
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
}

func TestFindOrCreateByNameOnlyCreatesOnce(t *testing.T) {
	svc := NewService(newMemoryRepository(), slog.Default())
	ctx := context.Background()

	c1, err := svc.FindOrCreate(ctx, UpsertRequest{Name: "Pedro Rojas"})
	require.NoError(t, err)
	c2, err := svc.FindOrCreate(ctx, UpsertRequest{Name: "pedro rojas"})
	require.NoError(t, err)
	require.Equal(t, c1.ID, c2.ID)
}

func TestFindOrCreateBackfillsContact(t *testing.T) {
	svc := NewService(newMemoryRepository(), slog.Default())
	ctx := context.Background()

	_, err := svc.FindOrCreate(ctx, UpsertRequest{Name: "Ana Díaz"})
	require.NoError(t, err)

	c, err := svc.FindOrCreate(ctx, UpsertRequest{
		Name:           "Ana Díaz",
		Identification: strPtr("V-14222333"),
		Phone:          strPtr("0414-5550000"),
	})
	require.NoError(t, err)
	require.NotNil(t, c.Identification)
	require.Equal(t, "V-14222333", *c.Identification)
	require.NotNil(t, c.Phone)
}
