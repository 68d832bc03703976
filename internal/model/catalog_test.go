package model

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func row(categoryID uuid.UUID, categoryName string, order *int32, productName string) CatalogRow {
	return CatalogRow{
		CategoryID:    categoryID,
		CategoryName:  categoryName,
		CategoryOrder: order,
		Product: ProductInfo{
			ID:   uuid.New(),
			Name: productName,
		},
	}
}

func categoryNames(categories []CategoryWithProducts) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}

func productNames(c CategoryWithProducts) []string {
	names := make([]string, 0, len(c.Products))
	for _, p := range c.Products {
		names = append(names, p.Name)
	}
	return names
}

func TestGroupByCategory_Empty(t *testing.T) {
	got := GroupByCategory(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)

	// пустой каталог сериализуется как [], а не null
	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestGroupByCategory_GroupsRowsByCategory(t *testing.T) {
	sushi, soups := uuid.New(), uuid.New()
	rows := []CatalogRow{
		row(sushi, "Sushi", ptr[int32](1), "Maki"),
		row(soups, "Soups", ptr[int32](2), "Miso"),
		row(sushi, "Sushi", ptr[int32](1), "California"),
	}

	got := GroupByCategory(rows)

	require.Len(t, got, 2)
	assert.Equal(t, sushi, got[0].ID)
	assert.Equal(t, []string{"California", "Maki"}, productNames(got[0]))
	assert.Equal(t, soups, got[1].ID)
	assert.Equal(t, []string{"Miso"}, productNames(got[1]))
}

// политика: категории без order идут последними
func TestGroupByCategory_NullOrderSortsLast(t *testing.T) {
	rows := []CatalogRow{
		row(uuid.New(), "Two", ptr[int32](2), "a"),
		row(uuid.New(), "Null", nil, "b"),
		row(uuid.New(), "One", ptr[int32](1), "c"),
	}

	got := GroupByCategory(rows)

	assert.Equal(t, []string{"One", "Two", "Null"}, categoryNames(got))
	assert.Nil(t, got[2].Order)
}

func TestGroupByCategory_TieBreakByName(t *testing.T) {
	rows := []CatalogRow{
		row(uuid.New(), "Desserts", ptr[int32](1), "a"),
		row(uuid.New(), "Drinks", nil, "b"),
		row(uuid.New(), "Appetizers", ptr[int32](1), "c"),
		row(uuid.New(), "Bento", nil, "d"),
	}

	got := GroupByCategory(rows)

	assert.Equal(t, []string{"Appetizers", "Desserts", "Bento", "Drinks"}, categoryNames(got))
}

func TestGroupByCategory_IndependentOfRowOrder(t *testing.T) {
	var rows []CatalogRow
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	orders := []*int32{ptr[int32](3), nil, ptr[int32](1), ptr[int32](3)}
	names := []string{"Ramen", "Extras", "Sushi", "Gyoza"}
	for i, id := range ids {
		for _, p := range []string{"x", "b", "m", "a"} {
			rows = append(rows, row(id, names[i], orders[i], p+names[i]))
		}
	}

	want, err := json.Marshal(GroupByCategory(rows))
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]CatalogRow(nil), rows...)
		rnd.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := json.Marshal(GroupByCategory(shuffled))
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got))
		assert.Equal(t, string(want), string(got))
	}
}

func TestCategoryWithProducts_JSONRoundTrip(t *testing.T) {
	price, err := decimal.NewFromString("12.35")
	require.NoError(t, err)

	in := []CategoryWithProducts{{
		ID:    uuid.New(),
		Name:  "Sushi",
		Order: ptr[int32](4),
		Products: []ProductInfo{
			{
				ID:          uuid.New(),
				Name:        "Maki saumon",
				Description: ptr("6 pièces"),
				Price:       NewPrice(price),
				Code:        ptr("S12"),
				Slug:        ptr("maki-saumon"),
			},
			{
				ID:   uuid.New(),
				Name: "Sans prix",
			},
		},
	}}

	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out []CategoryWithProducts
	require.NoError(t, json.Unmarshal(b, &out))

	require.Len(t, out, 1)
	require.Len(t, out[0].Products, 2)
	assert.Equal(t, in[0].ID, out[0].ID)
	assert.Equal(t, *in[0].Order, *out[0].Order)

	first := out[0].Products[0]
	assert.True(t, first.Price.Valid)
	assert.True(t, price.Equal(first.Price.Decimal), "price %s", first.Price.Decimal)
	assert.Equal(t, "6 pièces", *first.Description)
	assert.Equal(t, "S12", *first.Code)
	assert.Equal(t, "maki-saumon", *first.Slug)

	second := out[0].Products[1]
	assert.False(t, second.Price.Valid)
	assert.Nil(t, second.Description)

	again, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(again))
}
