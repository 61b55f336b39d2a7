// internal/handler/contribution_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"giftwallet-service/internal/usecase/contribution"
	"giftwallet-service/pkg/response"
)

func CreateContributionHandler(contributionUC *contribution.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type requestBody struct {
			WishlistItemID   string `json:"wishlist_item_id"`
			ContributorName  string `json:"contributor_name"`
			ContributorEmail string `json:"contributor_email"`
			Message          string `json:"message"`
			Amount           int64  `json:"amount"`
		}

		var body requestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		c, err := contributionUC.Create(r.Context(), contribution.CreateInput{
			WishlistItemID:   body.WishlistItemID,
			ContributorName:  body.ContributorName,
			ContributorEmail: body.ContributorEmail,
			Message:          body.Message,
			Amount:           body.Amount,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		response.JSON(w, http.StatusCreated, c)
	}
}
