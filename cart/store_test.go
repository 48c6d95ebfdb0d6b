package cart

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ecofloss-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySlot struct {
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (m *memorySlot) Load(_ context.Context) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.data == nil {
		return nil, ErrSlotEmpty
	}
	return m.data, nil
}

func (m *memorySlot) Save(_ context.Context, data []byte) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func TestStoreAddItemGeneratesLineID(t *testing.T) {
	store := NewStore(nil, nil)
	ctx := context.Background()
	store.Load(ctx)

	state := store.AddItem(ctx, flossProduct(), 1, nil)
	require.Len(t, state.Items, 1)
	assert.True(t, strings.HasPrefix(state.Items[0].ID, "prod-floss-"))

	other := store.AddItem(ctx, flossProduct(), 1, &models.SelectedOptions{PackSize: "2"})
	require.Len(t, other.Items, 2)
	assert.NotEqual(t, other.Items[0].ID, other.Items[1].ID)
}

func TestStoreDoesNotPersistBeforeLoad(t *testing.T) {
	slot := &memorySlot{}
	store := NewStore(slot, nil)
	ctx := context.Background()

	store.AddItem(ctx, flossProduct(), 1, nil)
	assert.Zero(t, slot.saves)

	store.Load(ctx)
	store.Toggle(ctx)
	assert.Equal(t, 1, slot.saves)
}

func TestStorePersistsEveryMutation(t *testing.T) {
	slot := &memorySlot{}
	store := NewStore(slot, nil)
	ctx := context.Background()
	store.Load(ctx)

	state := store.AddItem(ctx, flossProduct(), 2, nil)
	store.UpdateQuantity(ctx, state.Items[0].ID, 5)
	store.Toggle(ctx)

	assert.Equal(t, 3, slot.saves)

	var persisted models.CartState
	require.NoError(t, json.Unmarshal(slot.data, &persisted))
	assert.Equal(t, 5, persisted.Items[0].Quantity)
	assert.True(t, persisted.IsOpen)
}

func TestStoreRoundTripThroughFileSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	ctx := context.Background()

	first := NewStore(NewFileSlot(path), nil)
	first.Load(ctx)
	first.AddItem(ctx, flossProduct(), 2, nil)
	first.AddItem(ctx, toothbrushProduct(), 1, &models.SelectedOptions{BristleType: models.BristleSoft, PackSize: "2"})
	first.Toggle(ctx)

	second := NewStore(NewFileSlot(path), nil)
	loaded := second.Load(ctx)

	assert.Equal(t, first.State(), loaded)
}

func TestStoreRoundTripKeepsEmptyImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	ctx := context.Background()

	product := models.Product{ID: "prod_plain", Name: "Gift Card", Price: 500, Images: []string{}, ImageURLs: []string{}}

	first := NewStore(NewFileSlot(path), nil)
	first.Load(ctx)
	first.AddItem(ctx, product, 1, nil)

	second := NewStore(NewFileSlot(path), nil)
	loaded := second.Load(ctx)

	assert.Equal(t, first.State(), loaded)
	require.Len(t, loaded.Items, 1)
	assert.NotNil(t, loaded.Items[0].Product.Images)
}

func TestStoreLoadMalformedFallsBackToEmpty(t *testing.T) {
	slot := &memorySlot{data: []byte("{not json")}
	store := NewStore(slot, nil)

	state := store.Load(context.Background())
	assert.Empty(t, state.Items)
	assert.False(t, state.IsOpen)
}

func TestStoreLoadReadErrorFallsBackToEmpty(t *testing.T) {
	slot := &memorySlot{loadErr: errors.New("connection refused")}
	store := NewStore(slot, nil)

	state := store.Load(context.Background())
	assert.Empty(t, state.Items)
}

func TestStoreLoadReadsOnlyOnce(t *testing.T) {
	ctx := context.Background()
	persisted, _ := json.Marshal(models.CartState{Items: []models.CartItem{{ID: "a", Product: flossProduct(), Quantity: 1}}})
	slot := &memorySlot{data: persisted}
	store := NewStore(slot, nil)

	store.Load(ctx)
	store.Clear(ctx)
	state := store.Load(ctx)
	assert.Empty(t, state.Items)
}

func TestStoreSaveErrorDoesNotFailMutation(t *testing.T) {
	slot := &memorySlot{saveErr: errors.New("disk full")}
	store := NewStore(slot, nil)
	ctx := context.Background()
	store.Load(ctx)

	state := store.AddItem(ctx, flossProduct(), 1, nil)
	assert.Len(t, state.Items, 1)
}

func TestStoreDerivedValues(t *testing.T) {
	store := NewStore(nil, nil)
	ctx := context.Background()
	store.Load(ctx)
	store.AddItem(ctx, flossProduct(), 2, nil)
	store.AddItem(ctx, toothbrushProduct(), 1, nil)

	assert.Equal(t, 3, store.TotalItems())
	assert.InDelta(t, 34.97, store.Subtotal(), 1e-9)
	assert.Equal(t, 7, store.TotalTrees())
	assert.InDelta(t, 6.2, store.TotalMicroplastics(), 1e-9)
	assert.InDelta(t, 3.497, store.ConservationImpact().TotalDonation, 1e-9)
}

func TestFileSlotMissingFileIsEmpty(t *testing.T) {
	slot := NewFileSlot(filepath.Join(t.TempDir(), "none.json"))
	_, err := slot.Load(context.Background())
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestFileSlotOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	slot := NewFileSlot(path)
	ctx := context.Background()

	require.NoError(t, slot.Save(ctx, []byte(`{"items":[],"isOpen":false}`)))
	require.NoError(t, slot.Save(ctx, []byte(`{"items":[],"isOpen":true}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"isOpen":true}`, string(data))
}
