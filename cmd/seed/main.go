// seed genera un script SQL para poblar una empresa demo con sus clientes a
// partir de un CSV (name;tax_id;address;email;phone). El CSV puede venir en
// ISO-8859-1 (export típico de hojas de cálculo en español); se transcodifica
// a UTF-8 al leer.
//
// Uso: go run ./cmd/seed [ruta/clientes.csv]
// Por defecto busca clientes.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_demo.sql
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func main() {
	csvPath := "clientes.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	content := string(raw)
	if !utf8.ValidString(content) {
		decoded, _, err := transform.String(charmap.ISO8859_1.NewDecoder(), content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Transcodificar ISO-8859-1: %v\n", err)
			os.Exit(1)
		}
		content = decoded
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parsear CSV: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_demo.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	companyID := uuid.New().String()
	out.WriteString("-- Empresa demo + clientes\n")
	out.WriteString("-- Generado desde " + filepath.Base(csvPath) + "\n\n")
	fmt.Fprintf(out, "INSERT INTO companies (id, name, tax_id, invoice_prefix, next_invoice_number)\n")
	fmt.Fprintf(out, "VALUES ('%s', 'Empresa Demo SAS', '900123456-7', 'FD-', 1)\nON CONFLICT (id) DO NOTHING;\n\n", companyID)

	count := 0
	for i, rec := range records {
		// Primera fila: cabecera si no parece un registro
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
			continue
		}
		if len(rec) < 2 || strings.TrimSpace(rec[0]) == "" || strings.TrimSpace(rec[1]) == "" {
			continue
		}
		name := escapeSQL(strings.TrimSpace(rec[0]))
		taxID := escapeSQL(strings.TrimSpace(rec[1]))
		address, email, phone := field(rec, 2), field(rec, 3), field(rec, 4)
		fmt.Fprintf(out, "INSERT INTO customers (id, company_id, name, tax_id, address, email, phone)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', '%s', '%s', '%s', '%s')\nON CONFLICT (id) DO NOTHING;\n",
			uuid.New().String(), companyID, name, taxID, address, email, phone)
		count++
	}

	fmt.Printf("Generado %s: 1 empresa, %d clientes\n", outPath, count)
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return escapeSQL(strings.TrimSpace(rec[i]))
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// findModuleRoot sube desde el directorio actual hasta encontrar go.mod.
func findModuleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
