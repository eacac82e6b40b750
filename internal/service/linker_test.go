package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-metrics/internal/area"
	"estate-metrics/internal/model"
	"estate-metrics/pkg/logger"
)

func newTestLinker(store *fakeStore) *LinkerService {
	return NewLinkerService(logger.NewNop(), area.NewDefaultResolver(), store, store)
}

func TestDeriveBuildingName(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected string
	}{
		{
			name:     "unit number stripped",
			address:  "904 Marina Heights Tower, Dubai Marina",
			expected: "Marina Heights Tower",
		},
		{
			name:     "no comma uses whole address",
			address:  "Marina Heights Tower",
			expected: "Marina Heights Tower",
		},
		{
			name:     "trailing number stripped",
			address:  "Burj Vista 1, Downtown Dubai",
			expected: "Burj Vista",
		},
		{
			name:     "number inside word kept",
			address:  "O2 Residence, JLT",
			expected: "O2 Residence",
		},
		{
			name:     "only numbers yields empty",
			address:  "1203, Some Street",
			expected: "",
		},
		{
			name:     "internal whitespace collapsed",
			address:  "12 Marina   Gate 2, Dubai Marina",
			expected: "Marina Gate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveBuildingName(tt.address))
		})
	}
}

func TestLinkOrCreate_CreatesBuildingWithArea(t *testing.T) {
	store := newFakeStore()
	linker := newTestLinker(store)

	listing := store.addListing(&model.Listing{
		ExternalID:      "l1",
		DisplayAddress:  "904 Marina Heights Tower, Dubai Marina",
		TransactionKind: model.TransactionSell,
		Latitude:        floatPtr(25.08),
	})

	building, err := linker.LinkOrCreate(context.Background(), listing)
	require.NoError(t, err)
	require.NotNil(t, building)

	assert.Equal(t, "Marina Heights Tower", building.Name)
	require.NotNil(t, building.Area)
	assert.Equal(t, "Dubai Marina", *building.Area)
	require.NotNil(t, building.Latitude)
	assert.Equal(t, 25.08, *building.Latitude)
}

func TestLinkOrCreate_ReusesExistingBuilding(t *testing.T) {
	store := newFakeStore()
	linker := newTestLinker(store)
	ctx := context.Background()

	first := store.addListing(&model.Listing{
		ExternalID:      "l1",
		DisplayAddress:  "Marina Heights Tower, Dubai Marina",
		TransactionKind: model.TransactionSell,
	})
	second := store.addListing(&model.Listing{
		ExternalID:      "l2",
		DisplayAddress:  "Marina Heights Tower, Dubai Marina",
		TransactionKind: model.TransactionRent,
	})

	b1, err := linker.LinkOrCreate(ctx, first)
	require.NoError(t, err)
	b2, err := linker.LinkOrCreate(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, b1.ID, b2.ID)
	assert.Len(t, store.buildings, 1)
}

func TestLinkOrCreate_SkipsLinkedAndAddressless(t *testing.T) {
	store := newFakeStore()
	linker := newTestLinker(store)
	ctx := context.Background()

	linked := store.addListing(&model.Listing{ExternalID: "l1", BuildingID: intPtrToUint(7)})
	noAddress := store.addListing(&model.Listing{ExternalID: "l2"})

	building, err := linker.LinkOrCreate(ctx, linked)
	require.NoError(t, err)
	assert.Nil(t, building)

	building, err = linker.LinkOrCreate(ctx, noAddress)
	require.NoError(t, err)
	assert.Nil(t, building)
	assert.Empty(t, store.buildings)
}

func TestLinkOrCreate_BackfillsMissingArea(t *testing.T) {
	store := newFakeStore()
	linker := newTestLinker(store)

	// Building created before any address carried an area token.
	existing := store.addBuilding(&model.Building{
		Name:    "Marina Heights Tower",
		Address: "Marina Heights Tower, Dubai Marina",
	})

	listing := store.addListing(&model.Listing{
		ExternalID:     "l1",
		DisplayAddress: "Marina Heights Tower, Dubai Marina",
	})

	building, err := linker.LinkOrCreate(context.Background(), listing)
	require.NoError(t, err)
	require.NotNil(t, building)
	assert.Equal(t, existing.ID, building.ID)
	require.NotNil(t, existing.Area)
	assert.Equal(t, "Dubai Marina", *existing.Area)
}

func TestLinkUnlinked(t *testing.T) {
	store := newFakeStore()
	linker := newTestLinker(store)

	store.addListing(&model.Listing{
		ExternalID:     "l1",
		DisplayAddress: "Marina Heights Tower, Dubai Marina",
	})
	store.addListing(&model.Listing{
		ExternalID:     "l2",
		DisplayAddress: "Burj Vista 1, Downtown Dubai",
	})
	store.addListing(&model.Listing{ExternalID: "l3"}) // no address, ignored

	linked, err := linker.LinkUnlinked(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, linked)
	assert.Len(t, store.buildings, 2)

	for _, externalID := range []string{"l1", "l2"} {
		found, _ := store.FindByExternalIDs(context.Background(), []string{externalID})
		require.Len(t, found, 1)
		assert.NotNil(t, found[0].BuildingID)
	}
}

func TestRefreshAreas(t *testing.T) {
	store := newFakeStore()
	linker := newTestLinker(store)

	// Stored without an area; a linked listing's address resolves one.
	building := store.addBuilding(&model.Building{
		Name:    "Diamond Views",
		Address: "Diamond Views",
	})
	store.addListing(&model.Listing{
		ExternalID:     "l1",
		DisplayAddress: "Diamond Views 4, JVC, Dubai",
		BuildingID:     &building.ID,
	})

	// No listing and an unresolvable address: stays without an area.
	store.addBuilding(&model.Building{
		Name:    "Mystery House",
		Address: "Mystery House, Nowhere",
	})

	updated, err := linker.RefreshAreas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	require.NotNil(t, building.Area)
	assert.Equal(t, "Jumeirah Village Circle", *building.Area)
}

func intPtrToUint(v uint) *uint { return &v }
