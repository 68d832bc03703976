package model

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// ProductInfo описывает публичное представление товара в выбранной локали
// цена хранится как decimal, чтобы переживать сериализацию в кэш без потери копеек
type ProductInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       Price     `json:"price"`
	Code        *string   `json:"code"`
	Slug        *string   `json:"slug"`
}

// CategoryWithProducts — категория и её активные товары, отсортированные по имени
// это единица, которая кэшируется и отдаётся клиенту
type CategoryWithProducts struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	Order    *int32        `json:"order"`
	Products []ProductInfo `json:"products"`
}

// CatalogRow одна плоская строка результата join'а пяти таблиц
type CatalogRow struct {
	CategoryID    uuid.UUID
	CategoryName  string
	CategoryOrder *int32
	Product       ProductInfo
}

// GroupByCategory собирает плоские строки обратно в иерархию категория -> товары
// и детерминированно сортирует результат:
//   - категории по order по возрастанию, категории без order идут после всех остальных,
//     при равенстве по имени, затем по id;
//   - товары внутри категории по имени, при равенстве по id.
//
// порядок результата не зависит ни от порядка строк, ни от порядка обхода map
func GroupByCategory(rows []CatalogRow) []CategoryWithProducts {
	grouped := make(map[uuid.UUID]*CategoryWithProducts, len(rows))

	for _, row := range rows {
		category, ok := grouped[row.CategoryID]
		if !ok {
			category = &CategoryWithProducts{
				ID:       row.CategoryID,
				Name:     row.CategoryName,
				Order:    row.CategoryOrder,
				Products: []ProductInfo{},
			}
			grouped[row.CategoryID] = category
		}
		category.Products = append(category.Products, row.Product)
	}

	result := make([]CategoryWithProducts, 0, len(grouped))
	for _, category := range grouped {
		slices.SortStableFunc(category.Products, compareProducts)
		result = append(result, *category)
	}
	slices.SortStableFunc(result, compareCategories)

	return result
}

func compareCategories(a, b CategoryWithProducts) int {
	if c := compareOrder(a.Order, b.Order); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}

// nil после любого заданного значения
func compareOrder(a, b *int32) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}

func compareProducts(a, b ProductInfo) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}
