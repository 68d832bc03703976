// Package locale выбирает одну поддерживаемую локаль по заголовку Accept-Language.
package locale

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Resolver сопоставляет языковые предпочтения клиента с фиксированным набором локалей
// безопасен для конкурентного использования: после создания не меняется
type Resolver struct {
	supported []supportedLocale
	fallback  string
}

type supportedLocale struct {
	code string
	tag  language.Tag
	// bare=true, если код содержит только язык без региона/письменности;
	// тогда к нему подходят и региональные варианты клиента (en-US -> en)
	bare bool
}

// NewResolver создаёт резолвер; коды, которые не парсятся как BCP 47, пропускаются
// fallback возвращается, когда ничего не подошло
func NewResolver(supported []string, fallback string) *Resolver {
	r := &Resolver{fallback: fallback}
	for _, code := range supported {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		r.supported = append(r.supported, supportedLocale{
			code: code,
			tag:  tag,
			bare: !strings.Contains(tag.String(), "-"),
		})
	}
	return r
}

// Default возвращает локаль по умолчанию
func (r *Resolver) Default() string {
	return r.fallback
}

// Supported сообщает, входит ли код в набор поддерживаемых локалей
func (r *Resolver) Supported(code string) bool {
	for _, s := range r.supported {
		if strings.EqualFold(s.code, code) {
			return true
		}
	}
	return false
}

// Resolve возвращает поддерживаемую локаль с наибольшим весом q из заголовка
// при равных весах побеждает та, что раньше указана клиентом
// никогда не возвращает ошибку: битые элементы списка отбрасываются по одному,
// а если не осталось ни одного подходящего, возвращается локаль по умолчанию
func (r *Resolver) Resolve(header string) string {
	if strings.TrimSpace(header) == "" {
		return r.fallback
	}

	var prefs []preference
	for _, entry := range strings.Split(header, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		tags, weights, err := language.ParseAcceptLanguage(entry)
		if err != nil {
			continue
		}
		for i, tag := range tags {
			prefs = append(prefs, preference{tag: tag, q: weights[i]})
		}
	}

	// стабильная сортировка сохраняет порядок клиента внутри одинакового веса
	slices.SortStableFunc(prefs, func(a, b preference) int {
		return cmp.Compare(b.q, a.q)
	})

	for _, p := range prefs {
		// q=0 означает "не подходит"
		if p.q <= 0 {
			continue
		}
		if code, ok := r.match(p.tag); ok {
			return code
		}
	}

	return r.fallback
}

type preference struct {
	tag language.Tag
	q   float32
}

func (r *Resolver) match(tag language.Tag) (string, bool) {
	for _, s := range r.supported {
		if s.tag == tag {
			return s.code, true
		}
	}

	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	for _, s := range r.supported {
		if !s.bare {
			continue
		}
		if sb, _ := s.tag.Base(); sb == base {
			return s.code, true
		}
	}
	return "", false
}
