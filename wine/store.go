package wine

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

const collectionQuery = `
SELECT
	wu.username,
	wu.email,
	wt.name,
	wt.producer,
	wt.grapes,
	wt.country,
	wt.region,
	wt.year,
	wt.price,
	wt.quantity,
	wt.bottle_size,
	wn.note_text
FROM wine_users wu
JOIN wine_table wt ON wu.id = wt.user_id
LEFT JOIN wine_notes wn ON wt.id = wn.wine_id
WHERE wu.id = $1`

// Querier is the subset of *sql.DB used by Store.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store reads collections from the wine tables.
type Store struct {
	db Querier
}

// NewStore creates a Store.
func NewStore(db Querier) *Store {
	return &Store{db: db}
}

// Collection returns every wine owned by userID. A wine with several notes
// appears once per note.
func (s *Store) Collection(ctx context.Context, userID int64) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, collectionQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("query collection of user %d: %w", userID, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var producer, grapes, country, region, note sql.NullString
		var year, quantity sql.NullInt64
		var price, bottleSize decimal.NullDecimal
		if err := rows.Scan(
			&r.Username, &r.Email, &r.Name,
			&producer, &grapes, &country, &region,
			&year, &price, &quantity, &bottleSize, &note,
		); err != nil {
			return nil, fmt.Errorf("scan wine: %w", err)
		}
		r.Producer = producer.String
		r.Grapes = grapes.String
		r.Country = country.String
		r.Region = region.String
		r.Year = int(year.Int64)
		r.Quantity = int(quantity.Int64)
		r.Price = price.Decimal
		r.BottleSize = bottleSize.Decimal
		r.Note = note.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection: %w", err)
	}
	return records, nil
}
