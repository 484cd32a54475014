package publishing

import (
	"context"
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// IsDuplicateEntry reports whether err is the MySQL duplicate-key error
// (1062). The unique slug index backstops concurrent creations; callers map
// it back to a slug conflict instead of a bare 500.
func IsDuplicateEntry(err error) bool {
	var myErr *mysqldriver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

// CreateWithSlug runs the shared draft-creation flow: inside one transaction
// it locks the sibling group, resolves a collision-free slug (or validates a
// manual one), and hands the insert the slug plus the next display order.
// An auto-generated slug that still loses a race to a concurrent creation is
// retried once against the fresh slug set; a manual slug is not.
func CreateWithSlug(ctx context.Context, db *gorm.DB, g Group, title string, manualSlug *string, insert func(tx *gorm.DB, slug string, order int) error) error {
	attempt := func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			sibs, err := LockSiblings(tx, g)
			if err != nil {
				return err
			}
			slugs, err := CollectSlugs(tx, g.Table)
			if err != nil {
				return err
			}

			var slug string
			if manualSlug != nil {
				if err := ValidateManualSlug(*manualSlug, slugs); err != nil {
					return err
				}
				slug = *manualSlug
			} else {
				if slug, err = GenerateSlug(title, slugs); err != nil {
					return err
				}
			}

			if err := insert(tx, slug, NextOrder(sibs)); err != nil {
				if IsDuplicateEntry(err) {
					return &SlugConflictError{Slug: slug}
				}
				return err
			}
			return nil
		})
	}

	err := attempt()
	var conflict *SlugConflictError
	if err != nil && manualSlug == nil && errors.As(err, &conflict) {
		return attempt()
	}
	return err
}

// ResolveSlugChange decides the new slug for an update request, enforcing
// slug immutability once published. It returns "" when the slug keeps its
// current value. A manual slug is validated against the collection (own slug
// excluded); a pre-publish title change regenerates the slug automatically.
func ResolveSlugChange(tx *gorm.DB, table, curSlug, curTitle string, st State, manualSlug, newTitle *string) (string, error) {
	wantManual := manualSlug != nil && *manualSlug != curSlug
	wantRename := newTitle != nil && *newTitle != curTitle

	if !wantManual && !wantRename {
		return "", nil
	}
	if st.Status() == StatusPublished {
		if wantManual {
			return "", &ValidationError{Reason: "slug is immutable once published"}
		}
		// Title edits on published items keep the live URL.
		return "", nil
	}

	slugs, err := CollectSlugs(tx, table)
	if err != nil {
		return "", err
	}
	others := slugs[:0]
	for _, s := range slugs {
		if s != curSlug {
			others = append(others, s)
		}
	}

	if wantManual {
		if err := ValidateManualSlug(*manualSlug, others); err != nil {
			return "", err
		}
		return *manualSlug, nil
	}

	slug, err := GenerateSlug(*newTitle, others)
	if err != nil {
		return "", err
	}
	if slug == curSlug {
		return "", nil
	}
	return slug, nil
}
