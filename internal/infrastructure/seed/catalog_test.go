package seed_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/seed"
)

func TestDemo_CatalogoConIdsEstables(t *testing.T) {
	cat, err := seed.Demo()
	require.NoError(t, err)
	assert.Len(t, cat.Locations, 3)
	assert.Len(t, cat.Products, 5)
	assert.Len(t, cat.Stock, 8)

	assert.Equal(t, seed.ProductID("TOR-M8"), seed.ProductID("tor-m8"), "el SKU no distingue mayúsculas")
	assert.Equal(t, seed.ProductID("TOR-M8"), cat.Products[0].ID)
	assert.Equal(t, "0.15", cat.Products[0].CostPrice.String())
	assert.Equal(t, seed.LocationID("bodega-central"), cat.Locations[0].ID)
}

func TestParse_Errores(t *testing.T) {
	cases := map[string]string{
		"tipo desconocido": "locations:\n  - {key: a, name: A, kind: GARAJE}\n",
		"ubicación no declarada": "locations:\n  - {key: a, name: A, kind: STORE}\n" +
			"products:\n  - {sku: X, name: X, stock: {b: \"1\"}}\n",
		"cantidad negativa": "locations:\n  - {key: a, name: A, kind: STORE}\n" +
			"products:\n  - {sku: X, name: X, stock: {a: \"-1\"}}\n",
		"costo inválido": "products:\n  - {sku: X, name: X, cost: abc}\n",
		"yaml inválido":  "locations: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := seed.Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestWriteSQL(t *testing.T) {
	cat, err := seed.Parse([]byte(`
locations:
  - {key: central, name: "Bodega O'Higgins", kind: warehouse}
products:
  - {sku: abc-1, name: Clavo, cost: "10.5", stock: {central: "7"}}
`))
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, cat.WriteSQL(&b))
	sql := b.String()

	assert.Contains(t, sql, "'Bodega O''Higgins'", "las comillas se escapan")
	assert.Contains(t, sql, "'WAREHOUSE', NULL)")
	assert.Contains(t, sql, "'ABC-1'")
	assert.Contains(t, sql, "10.5")
	assert.Contains(t, sql, "ON CONFLICT (product_id, location_id) DO NOTHING")
	assert.True(t, strings.HasSuffix(sql, "COMMIT;\n"))
}
