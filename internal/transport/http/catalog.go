package http

import (
	"net/http"
)

// getProducts отдаёт каталог, сгруппированный по категориям
// локаль берётся из Accept-Language, фильтр из ?search=
func (h *Handler) getProducts(w http.ResponseWriter, r *http.Request) {
	locale := h.deps.Locales.Resolve(r.Header.Get("Accept-Language"))
	search := r.URL.Query().Get("search")

	categories, err := h.deps.Catalog.GetProductsGroupedByCategory(r.Context(), locale, search)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Language", locale)
	w.Header().Add("Vary", "Accept-Language")
	h.respondJSON(w, http.StatusOK, categories)
}
