package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/brunomoyse/tsb-service/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Querier описывает часть pgxpool.Pool, которая нужна каталогу; в тестах подменяется
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CatalogRepository читает локализованный каталог: категории с активными товарами
// только чтение, в таблицы каталога ничего не пишет
type CatalogRepository struct {
	db Querier
}

// NewCatalogRepository создает новый экземпляр репозитория каталога
func NewCatalogRepository(db Querier) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetProductsGroupedByCategory выполняет join пяти таблиц для локали и
// необязательного поискового текста и возвращает категории с товарами
// пустой результат не является ошибкой
func (r *CatalogRepository) GetProductsGroupedByCategory(ctx context.Context, locale, search string) ([]model.CategoryWithProducts, error) {
	const op = "repository.postgres.catalog.GetProductsGroupedByCategory"

	sql, args, err := buildCatalogQuery(locale, SearchTerms(search)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build catalog query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrDataSourceUnavailable, err)
	}
	defer rows.Close()

	var flat []model.CatalogRow
	for rows.Next() {
		var (
			row   model.CatalogRow
			price *float64
		)
		err := rows.Scan(
			&row.CategoryID, &row.CategoryName, &row.CategoryOrder,
			&row.Product.ID, &row.Product.Name, &row.Product.Description,
			&price, &row.Product.Code, &row.Product.Slug,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan catalog row: %w: %w", op, ErrDataSourceUnavailable, err)
		}
		if price != nil {
			row.Product.Price = model.NewPrice(decimal.NewFromFloat(*price))
		}
		flat = append(flat, row)
	}
	// ошибка посреди чтения не должна превращаться в частичный результат
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to read catalog rows: %w: %w", op, ErrDataSourceUnavailable, err)
	}

	return model.GroupByCategory(flat), nil
}

// SearchTerms разбивает поисковый текст по пробелам
// пустой текст или текст из одних пробелов означает отсутствие фильтра
func SearchTerms(search string) []string {
	return strings.Fields(search)
}

func buildCatalogQuery(locale string, terms []string) squirrel.SelectBuilder {
	q := psql.
		Select(
			"pc.id", "pct.name", `pc."order"`,
			"p.id", "pt.name", "pt.description", "p.price", "p.code", "p.slug",
		).
		From("product_categories pc").
		Join("product_category_translations pct ON pct.product_category_id = pc.id").
		Join("product_product_category ppc ON ppc.product_category_id = pc.id").
		Join("products p ON p.id = ppc.product_id").
		Join("product_translations pt ON pt.product_id = p.id").
		Where(squirrel.Eq{"pct.locale": locale}).
		Where(squirrel.Eq{"pt.locale": locale}).
		Where(squirrel.Eq{"p.is_active": true})

	// каждый термин обязателен (AND), но может совпасть с именем товара или категории (OR)
	for _, term := range terms {
		pattern := "%" + escapeLike(term) + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"pt.name": pattern},
			squirrel.ILike{"pct.name": pattern},
		})
	}

	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// поиск ищет подстроку, а не шаблон, поэтому спецсимволы LIKE экранируются
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
