package wine

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schema = `
CREATE TABLE wine_users (id INTEGER PRIMARY KEY, username TEXT NOT NULL, email TEXT NOT NULL);
CREATE TABLE wine_table (
	id INTEGER PRIMARY KEY, user_id INTEGER, name TEXT NOT NULL, producer TEXT, grapes TEXT,
	country TEXT, region TEXT, year INTEGER, quantity INTEGER, bottle_size NUMERIC, price NUMERIC
);
CREATE TABLE wine_notes (id INTEGER PRIMARY KEY, wine_id INTEGER, note_text TEXT);

INSERT INTO wine_users (id, username, email) VALUES (1, 'anna', 'anna@example.com'), (2, 'ben', 'ben@example.com');
INSERT INTO wine_table (id, user_id, name, producer, grapes, country, region, year, quantity, bottle_size, price) VALUES
	(10, 1, 'Barolo Cannubi', 'Brezza', 'Nebbiolo', 'Italy', 'Piedmont', 2016, 3, 0.75, 62.50),
	(11, 1, 'Chateauneuf-du-Pape', 'Beaucastel', 'Grenache, Syrah, Mourvedre', 'France', 'Rhone', 2018, 2, 0.75, 48),
	(12, 1, 'Langhe Nebbiolo', 'Brezza', 'Nebbiolo', 'Italy', 'Piedmont', 2020, 6, 1.5, NULL),
	(20, 2, 'Rioja Reserva', 'Muga', 'Tempranillo', 'Spain', 'Rioja', 2017, 1, 0.75, 25);
INSERT INTO wine_notes (wine_id, note_text) VALUES (10, 'Tar and roses');
`

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return NewStore(db)
}

func TestCollection(t *testing.T) {
	records, err := newStore(t).Collection(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 3)

	byName := map[string]Record{}
	for _, r := range records {
		byName[r.Name] = r
	}
	barolo := byName["Barolo Cannubi"]
	assert.Equal(t, "anna", barolo.Username)
	assert.Equal(t, "Tar and roses", barolo.Note)
	assert.True(t, barolo.Price.Equal(decimal.RequireFromString("62.5")))
	assert.True(t, barolo.BottleSize.Equal(decimal.RequireFromString("0.75")))
	assert.Equal(t, 2016, barolo.Year)

	langhe := byName["Langhe Nebbiolo"]
	assert.True(t, langhe.Price.IsZero())
	assert.Empty(t, langhe.Note)
}

func TestCollection_UnknownUser(t *testing.T) {
	records, err := newStore(t).Collection(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAnalyze(t *testing.T) {
	records, err := newStore(t).Collection(context.Background(), 1)
	require.NoError(t, err)

	stats, err := Analyze(records)
	require.NoError(t, err)

	assert.Equal(t, 11, stats.TotalBottles)
	assert.Equal(t, 3, stats.UniqueWines)
	assert.Equal(t, map[string]int{"Italy": 9, "France": 2}, stats.Countries)
	assert.Equal(t, 9, stats.Grapes["Nebbiolo"])
	assert.Equal(t, 2, stats.Grapes["Syrah"])
	assert.Equal(t, 9, stats.Producers["Brezza"])
	assert.Equal(t, 6, stats.Years[2020])

	require.NotNil(t, stats.MostExpensive)
	assert.Equal(t, "Barolo Cannubi", stats.MostExpensive.Wine)
	assert.Equal(t, 2016, stats.MostExpensive.Year)
}

func TestAnalyze_Empty(t *testing.T) {
	_, err := Analyze(nil)
	assert.ErrorIs(t, err, ErrNoWines)
}

func TestAnalyze_NoPrices(t *testing.T) {
	stats, err := Analyze([]Record{{Name: "Table wine", Quantity: 1}})
	require.NoError(t, err)
	assert.Nil(t, stats.MostExpensive)
}

func TestTop(t *testing.T) {
	got := Top(map[string]int{"b": 2, "a": 2, "c": 5, "": 9}, 2)
	assert.Equal(t, []Count{{"c", 5}, {"a", 2}}, got)
}

func TestStatsContext(t *testing.T) {
	stats, err := Analyze([]Record{
		{Name: "Barolo", Producer: "Brezza", Grapes: "Nebbiolo", Country: "Italy", Region: "Piedmont", Year: 2016, Quantity: 3, Price: decimal.NewFromInt(62)},
		{Name: "Rioja", Producer: "Muga", Grapes: "Tempranillo", Country: "Spain", Region: "Rioja", Year: 2017, Quantity: 1, Price: decimal.NewFromInt(25)},
	})
	require.NoError(t, err)

	ctx := stats.Context()
	assert.Contains(t, ctx, "4 bottles across 2 wines")
	assert.Contains(t, ctx, "Countries: Italy (3), Spain (1)")
	assert.Contains(t, ctx, "Vintages: 2016 (3), 2017 (1)")
	assert.Contains(t, ctx, "Most expensive: Barolo by Brezza (2016) at 62.00.")
}
