package service

import (
	"context"
	"fmt"

	"github.com/emrgen/research/internal/model"
)

// DefaultMaxFavorites is the number of favorite authorships a research entity may hold.
const DefaultMaxFavorites = 5

// SetMaxFavorites changes the favorite limit, a non-positive value keeps the default.
func (d *DocumentService) SetMaxFavorites(n int) {
	if n > 0 {
		d.maxFavorites = n
	}
}

// SetAuthorshipFavorite marks or unmarks the authorship of the research entity on a
// document as favorite.
func (d *DocumentService) SetAuthorshipFavorite(ctx context.Context, researchEntityID, documentID uint, favorite bool) (*model.Authorship, error) {
	var authorship *model.Authorship
	err := d.run(ctx, researchEntityID, func(w *workflow) error {
		var err error
		authorship, err = w.tx.GetAuthorship(ctx, documentID, researchEntityID)
		if err != nil {
			return err
		}
		if authorship.Favorite == favorite {
			return nil
		}

		if favorite {
			count, err := w.tx.CountFavoriteAuthorships(ctx, researchEntityID)
			if err != nil {
				return err
			}
			if count >= int64(d.maxFavorites) {
				return fmt.Errorf("%w: %d", ErrFavoriteLimit, d.maxFavorites)
			}
		}

		authorship.Favorite = favorite
		return w.tx.UpdateAuthorship(ctx, authorship)
	})
	if err != nil {
		return nil, err
	}

	return authorship, nil
}

// SetAuthorshipPrivacy shows or hides the authorship on the public profile of the
// research entity.
func (d *DocumentService) SetAuthorshipPrivacy(ctx context.Context, researchEntityID, documentID uint, public bool) (*model.Authorship, error) {
	var authorship *model.Authorship
	err := d.run(ctx, researchEntityID, func(w *workflow) error {
		var err error
		authorship, err = w.tx.GetAuthorship(ctx, documentID, researchEntityID)
		if err != nil {
			return err
		}

		authorship.Public = public
		return w.tx.UpdateAuthorship(ctx, authorship)
	})
	if err != nil {
		return nil, err
	}

	return authorship, nil
}
