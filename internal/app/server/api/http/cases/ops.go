package cases

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "cases-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/cases",
		Summary:     "List case summaries",
		Description: "Returns lightweight summaries without the case document.",
		Tags:        []string{"cases"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID: "cases-create",
		Method:      http.MethodPost,
		Path:        "/api/v1/cases",
		Summary:     "Register a new case",
		Tags:        []string{"cases"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "cases-get",
		Method:      http.MethodGet,
		Path:        "/api/v1/cases/{id}",
		Summary:     "Get the full case",
		Tags:        []string{"cases"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) replaceOp() huma.Operation {
	return huma.Operation{
		OperationID: "cases-replace",
		Method:      http.MethodPut,
		Path:        "/api/v1/cases/{id}",
		Summary:     "Replace the case document",
		Description: "Overwrites the case document wholesale, recomputes the derived priority and consumes one edit from the case's quota.",
		Tags:        []string{"cases"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
