// Package seed catálogo inicial (ubicaciones, productos y stock) para el store en memoria
// y para el script SQL de carga en PostgreSQL.
package seed

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

//go:embed catalog.yaml
var demoCatalog []byte

type locationDoc struct {
	Key     string `yaml:"key"`
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	Address string `yaml:"address"`
}

type productDoc struct {
	SKU          string            `yaml:"sku"`
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Category     string            `yaml:"category"`
	Unit         string            `yaml:"unit"`
	Cost         string            `yaml:"cost"`
	ReorderLevel string            `yaml:"reorder_level"`
	Stock        map[string]string `yaml:"stock"` // clave de ubicación → cantidad
}

type catalogDoc struct {
	Locations []locationDoc `yaml:"locations"`
	Products  []productDoc  `yaml:"products"`
}

// Catalog catálogo resuelto con ids estables (derivados de la clave de ubicación y del SKU).
type Catalog struct {
	Locations []entity.Location
	Products  []entity.Product
	Stock     []entity.StockEntry
}

// LocationID id estable de una ubicación a partir de su clave.
func LocationID(key string) string { return stableID("loc:" + key) }

// ProductID id estable de un producto a partir de su SKU.
func ProductID(sku string) string { return stableID("prd:" + sku) }

func stableID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(name))).String()
}

// Demo catálogo de demostración embebido.
func Demo() (*Catalog, error) {
	return Parse(demoCatalog)
}

// Parse lee un catálogo YAML y valida referencias, tipos y cantidades.
func Parse(raw []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("seed: yaml: %w", err)
	}

	out := &Catalog{}
	keys := make(map[string]string, len(doc.Locations))
	for _, l := range doc.Locations {
		if l.Key == "" || l.Name == "" {
			return nil, fmt.Errorf("seed: ubicación sin clave o nombre")
		}
		kind := entity.LocationKind(strings.ToUpper(l.Kind))
		switch kind {
		case entity.LocationWarehouse, entity.LocationProduction, entity.LocationStore, entity.LocationRack:
		default:
			return nil, fmt.Errorf("seed: ubicación %s: tipo desconocido %q", l.Key, l.Kind)
		}
		id := LocationID(l.Key)
		keys[l.Key] = id
		out.Locations = append(out.Locations, entity.Location{ID: id, Name: l.Name, Kind: kind, Address: l.Address})
	}

	for _, p := range doc.Products {
		if p.SKU == "" || p.Name == "" {
			return nil, fmt.Errorf("seed: producto sin SKU o nombre")
		}
		cost, err := amount(p.Cost)
		if err != nil {
			return nil, fmt.Errorf("seed: %s: costo: %w", p.SKU, err)
		}
		reorder, err := amount(p.ReorderLevel)
		if err != nil {
			return nil, fmt.Errorf("seed: %s: nivel de reorden: %w", p.SKU, err)
		}
		unit := p.Unit
		if unit == "" {
			unit = "unidad"
		}
		prod := entity.Product{
			ID:           ProductID(p.SKU),
			SKU:          strings.ToUpper(p.SKU),
			Name:         p.Name,
			Description:  p.Description,
			Category:     p.Category,
			UnitMeasure:  unit,
			CostPrice:    cost,
			ReorderLevel: reorder,
		}
		out.Products = append(out.Products, prod)

		locKeys := make([]string, 0, len(p.Stock))
		for k := range p.Stock {
			locKeys = append(locKeys, k)
		}
		sort.Strings(locKeys)
		for _, k := range locKeys {
			locID, ok := keys[k]
			if !ok {
				return nil, fmt.Errorf("seed: %s: ubicación %q no declarada", p.SKU, k)
			}
			qty, err := amount(p.Stock[k])
			if err != nil {
				return nil, fmt.Errorf("seed: %s en %s: %w", p.SKU, k, err)
			}
			out.Stock = append(out.Stock, entity.StockEntry{ProductID: prod.ID, LocationID: locID, Quantity: qty})
		}
	}
	return out, nil
}

func amount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("cantidad negativa %s", d)
	}
	return d, nil
}

// WriteSQL escribe los INSERT del catálogo. Las filas existentes no se modifican.
func (c *Catalog) WriteSQL(w io.Writer) error {
	var b strings.Builder
	b.WriteString("-- Generado por cmd/seed. No editar a mano.\nBEGIN;\n\n")

	b.WriteString("INSERT INTO locations (id, name, kind, address) VALUES\n")
	for i, l := range c.Locations {
		fmt.Fprintf(&b, "  ('%s', %s, '%s', %s)%s\n", l.ID, quote(l.Name), l.Kind, nullableQuote(l.Address), sep(i, len(c.Locations)))
	}
	b.WriteString("ON CONFLICT (id) DO NOTHING;\n\n")

	b.WriteString("INSERT INTO products (id, sku, name, description, category, unit_measure, cost_price, reorder_level) VALUES\n")
	for i, p := range c.Products {
		fmt.Fprintf(&b, "  ('%s', %s, %s, %s, %s, %s, %s, %s)%s\n", p.ID, quote(p.SKU), quote(p.Name), nullableQuote(p.Description),
			quote(p.Category), quote(p.UnitMeasure), p.CostPrice.String(), p.ReorderLevel.String(), sep(i, len(c.Products)))
	}
	b.WriteString("ON CONFLICT (id) DO NOTHING;\n\n")

	if len(c.Stock) > 0 {
		b.WriteString("INSERT INTO stock (product_id, location_id, quantity) VALUES\n")
		for i, s := range c.Stock {
			fmt.Fprintf(&b, "  ('%s', '%s', %s)%s\n", s.ProductID, s.LocationID, s.Quantity.String(), sep(i, len(c.Stock)))
		}
		b.WriteString("ON CONFLICT (product_id, location_id) DO NOTHING;\n\n")
	}
	b.WriteString("COMMIT;\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func quote(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }

func nullableQuote(s string) string {
	if s == "" {
		return "NULL"
	}
	return quote(s)
}

func sep(i, n int) string {
	if i == n-1 {
		return ""
	}
	return ","
}
