package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/invoice"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const docNoMaxLen = 64

func InvoiceGet(svc invoice.Service, logg *logger.Logger) http.HandlerFunc {
	return documentHandler(svc.Get, logg)
}

func ProformaGet(svc invoice.Service, logg *logger.Logger) http.HandlerFunc {
	return documentHandler(svc.GetProforma, logg)
}

func documentHandler(load func(context.Context, invoice.Request) (*invoice.Document, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := load(r.Context(), invoice.Request{
			UserID: userID,
			DocNo:  validators.SanitizeString(chi.URLParam(r, "doNo"), docNoMaxLen),
			Preset: validators.SanitizeString(r.URL.Query().Get("preset"), 32),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, doc)
	}
}
