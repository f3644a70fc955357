// seed genera el script SQL que carga el catálogo inicial (ubicaciones, productos y stock)
// en PostgreSQL. Los ids coinciden con los del store en memoria.
//
// Uso: go run ./cmd/seed [ruta/catalogo.yaml]
// Sin argumento usa el catálogo de demostración embebido.
// Escribe: db/seed.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/seed"
)

func main() {
	var (
		cat *seed.Catalog
		err error
	)
	if len(os.Args) > 1 {
		raw, rerr := os.ReadFile(os.Args[1])
		if rerr != nil {
			fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", rerr)
			os.Exit(1)
		}
		cat, err = seed.Parse(raw)
	} else {
		cat, err = seed.Demo()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Catálogo: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join("db", "seed.sql")
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear %s: %v\n", outPath, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := cat.WriteSQL(f); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Escrito %s: %d ubicaciones, %d productos, %d entradas de stock\n",
		outPath, len(cat.Locations), len(cat.Products), len(cat.Stock))
}
